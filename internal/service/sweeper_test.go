package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickyEvicter struct {
	calls atomic.Int32
}

func (p *panickyEvicter) EvictStale(time.Time, time.Duration) []string {
	if p.calls.Add(1) == 1 {
		panic("boom")
	}
	return nil
}

type nopEvicter struct{}

func (nopEvicter) EvictStale(time.Time, time.Duration) []string { return nil }

func TestSweeper_SurvivesFailedCycle(t *testing.T) {
	users := &panickyEvicter{}
	s := NewSweeper(SweeperConfig{Interval: 5 * time.Millisecond}, users, nopEvicter{}, clock.Real{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return users.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_Defaults(t *testing.T) {
	s := NewSweeper(SweeperConfig{}, nopEvicter{}, nopEvicter{}, clock.Real{})
	assert.Equal(t, DefaultSweeperConfig(), s.cfg)
}
