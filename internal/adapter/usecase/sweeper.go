package usecase

import (
	"context"
	"log/slog"
	"time"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
)

// SweeperConfig tunes the background sweeper.
type SweeperConfig struct {
	Interval       time.Duration
	Retention      time.Duration
	StorageTimeout time.Duration
}

// Sweeper periodically completes campaigns that ran out of time or budget
// and prunes usage history nobody reads anymore. Lazy completion on read
// keeps working without it.
type Sweeper struct {
	lifecycle
	clock     port.Clock
	ledger    port.UsageLedger
	interval  time.Duration
	retention time.Duration
}

// NewSweeper returns a sweeper. Retention is raised to minRetention, the
// longest admission window, so pruning never changes an admission outcome.
func NewSweeper(logger *slog.Logger, clock port.Clock, store port.Storage, metrics port.Metrics, cfg SweeperConfig, minRetention time.Duration) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Sweeper{
		lifecycle: lifecycle{logger: logger, store: store, metrics: metrics, timeout: cfg.StorageTimeout},
		clock:     clock,
		ledger:    store,
		interval:  cfg.Interval,
		retention: max(cfg.Retention, minRetention),
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("sweeper started", slog.Duration("interval", s.interval), slog.Duration("retention", s.retention))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			completed, pruned, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error("sweep failed", slog.Any("error", err))
				continue
			}
			if completed > 0 || pruned > 0 {
				s.logger.Info("sweep finished", slog.Int("completed", completed), slog.Int64("pruned", pruned))
			}
		}
	}
}

// SweepOnce runs a single pass and reports how many campaigns it completed
// and how many usage events it pruned.
func (s *Sweeper) SweepOnce(ctx context.Context) (completed int, pruned int64, err error) {
	now := s.clock.Now()

	lctx, cancel := s.storageCtx(ctx)
	active, err := s.store.ListByStatus(lctx, domain.StatusActive)
	cancel()
	if err != nil {
		return 0, 0, err
	}
	for _, c := range active {
		if advanced, _ := c.Advance(now); advanced.Status == c.Status {
			continue
		}
		updated, err := s.apply(ctx, "", c.ID, now, advanceOnly)
		if err != nil {
			s.logger.Warn("complete campaign", slog.String("campaign_id", c.ID), slog.Any("error", err))
			continue
		}
		if updated.Status == domain.StatusCompleted {
			completed++
		}
	}

	pctx, cancel := s.storageCtx(ctx)
	defer cancel()
	pruned, err = s.ledger.Prune(pctx, now.Add(-s.retention))
	return completed, pruned, err
}
