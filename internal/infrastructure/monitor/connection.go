package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Probe reports whether one dependency answers.
type Probe func(ctx context.Context) error

// PostgresProbe pings the pool.
func PostgresProbe(pg *pgxpool.Pool) Probe {
	return func(ctx context.Context) error {
		return pg.Ping(ctx)
	}
}

// RedisProbe pings the client.
func RedisProbe(client *redislib.Client) Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

type Monitor struct {
	probes  map[string]Probe
	timeout time.Duration

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   make(map[string]Probe),
		timeout:  3 * time.Second,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Register adds a named probe. Call before Start.
func (m *Monitor) Register(name string, probe Probe) *Monitor {
	m.probes[name] = probe
	return m
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether every probe passed on the last check.
// A monitor that has not checked yet is offline.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	names := make([]string, 0, len(m.probes))
	for name := range m.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	status := Status{Checks: make(map[string]bool, len(names)), LastCheck: time.Now()}
	for _, name := range names {
		probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := m.probes[name](probeCtx)
		cancel()
		if err != nil {
			m.logger.Debug("dependency probe failed", zap.String("dependency", name), zap.Error(err))
		}
		status.Checks[name] = err == nil
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Online() != status.Online() {
		m.logger.Info("connectivity changed", zap.Bool("online", status.Online()))
	}
	return status.clone()
}
