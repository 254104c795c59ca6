package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost-engine/internal/core/domain"
)

func TestSweepOnce(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	short, err := e.svc.RequestBoost(ctx, boost("s1", post("p1"), 999, 1))
	require.NoError(t, err)
	long, err := e.svc.RequestBoost(ctx, boost("s2", post("p2"), 999, 48))
	require.NoError(t, err)

	sw := NewSweeper(nil, e.clock, e.store, e.metrics, SweeperConfig{Interval: time.Minute, Retention: time.Hour}, e.svc.admit.Lookback())

	e.clock.Advance(2 * time.Hour)
	completed, pruned, err := sw.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Zero(t, pruned, "retention never drops below the admission lookback")

	c, err := e.store.Get(ctx, short.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, c.Status)
	c, err = e.store.Get(ctx, long.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, c.Status)

	e.clock.Advance(23 * time.Hour)
	completed, pruned, err = sw.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, completed)
	assert.Equal(t, int64(2), pruned)
	assert.Empty(t, usage(t, e.store, "s1"))
}

func TestSweeperRunStopsWithContext(t *testing.T) {
	e := newEnv(t, nil, nil)
	sw := NewSweeper(nil, e.clock, e.store, nil, SweeperConfig{Interval: time.Millisecond}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
