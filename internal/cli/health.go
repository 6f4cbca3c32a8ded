package cli

import (
	"context"
	"sync"
	"time"

	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/monitor"
)

// lazyHealth probes the directory the first time a command asks whether it is
// reachable, then reuses the answer for the rest of the invocation.
type lazyHealth struct {
	monitor *monitor.Monitor
	once    sync.Once
}

func newLazyHealth(m *monitor.Monitor) *lazyHealth {
	return &lazyHealth{monitor: m}
}

func (h *lazyHealth) IsOnline() bool {
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.monitor.Refresh(ctx)
	})
	return h.monitor.IsOnline()
}
