package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/clock"
)

type SweeperConfig struct {
	Interval    time.Duration
	PresenceTTL time.Duration
	DeviceTTL   time.Duration
}

func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:    60 * time.Second,
		PresenceTTL: 300 * time.Second,
		DeviceTTL:   600 * time.Second,
	}
}

// Evicter removes entries idle for longer than ttl and returns their ids.
type Evicter interface {
	EvictStale(now time.Time, ttl time.Duration) []string
}

type SweepResult struct {
	Users   []string
	Devices []string
}

// Sweeper periodically drops stale presence and device records. Evicted
// clients are not notified.
type Sweeper struct {
	cfg     SweeperConfig
	users   Evicter
	devices Evicter
	clock   clock.Clock
}

func NewSweeper(cfg SweeperConfig, users, devices Evicter, clk clock.Clock) *Sweeper {
	def := DefaultSweeperConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.PresenceTTL <= 0 {
		cfg.PresenceTTL = def.PresenceTTL
	}
	if cfg.DeviceTTL <= 0 {
		cfg.DeviceTTL = def.DeviceTTL
	}
	return &Sweeper{cfg: cfg, users: users, devices: devices, clock: clk}
}

// Sweep runs one eviction pass at now.
func (s *Sweeper) Sweep(now time.Time) SweepResult {
	return SweepResult{
		Users:   s.users.EvictStale(now, s.cfg.PresenceTTL),
		Devices: s.devices.EvictStale(now, s.cfg.DeviceTTL),
	}
}

// Run sweeps on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.Info("sweeper started", "interval", s.cfg.Interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			if err := s.cycle(); err != nil {
				slog.Error("sweeper cycle failed", "err", err)
			}
		}
	}
}

func (s *Sweeper) cycle() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	res := s.Sweep(s.clock.Now())
	if len(res.Users) > 0 || len(res.Devices) > 0 {
		slog.Debug("sweeper evicted",
			"users", len(res.Users),
			"devices", len(res.Devices))
	}
	return nil
}
