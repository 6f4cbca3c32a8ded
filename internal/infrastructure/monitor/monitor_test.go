package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorIsOfflineBeforeFirstCheck(t *testing.T) {
	m := New(time.Second, nil)
	m.Register("directory", func(context.Context) error { return nil })

	assert.False(t, m.IsOnline())
}

func TestMonitorRefresh(t *testing.T) {
	var redisErr error
	m := New(time.Second, nil).
		Register("postgresql", func(context.Context) error { return nil }).
		Register("redis", func(context.Context) error { return redisErr })

	status := m.Refresh(context.Background())
	require.True(t, status.Online())
	assert.True(t, m.IsOnline())
	assert.Equal(t, map[string]bool{"postgresql": true, "redis": true}, status.Checks)

	redisErr = errors.New("connection refused")
	status = m.Refresh(context.Background())
	assert.False(t, status.Online())
	assert.False(t, m.IsOnline())
	assert.False(t, m.GetStatus().Checks["redis"])
}

func TestMonitorProbeTimeout(t *testing.T) {
	m := New(time.Second, nil)
	m.timeout = 10 * time.Millisecond
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.False(t, m.Refresh(context.Background()).Online())
}

func TestStatusSnapshotIsIndependent(t *testing.T) {
	m := New(time.Second, nil).Register("a", func(context.Context) error { return nil })
	m.Refresh(context.Background())

	snapshot := m.GetStatus()
	snapshot.Checks["a"] = false
	assert.True(t, m.IsOnline())
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(time.Millisecond, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
