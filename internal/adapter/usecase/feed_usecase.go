package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
	"boost-engine/internal/core/ranking"
)

// FeedUseCase implements port.FeedUseCase. Concurrent builds share one
// read of the active campaigns; the snapshot may be slightly stale.
type FeedUseCase struct {
	logger  *slog.Logger
	store   port.CampaignStore
	engine  *ranking.Engine
	metrics port.Metrics
	timeout time.Duration
	group   singleflight.Group
}

// NewFeedUseCase wires the feed usecase. timeout bounds the campaign read.
func NewFeedUseCase(logger *slog.Logger, store port.CampaignStore, engine *ranking.Engine, metrics port.Metrics, timeout time.Duration) *FeedUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &FeedUseCase{logger: logger, store: store, engine: engine, metrics: metrics, timeout: timeout}
}

func (f *FeedUseCase) BuildFeed(ctx context.Context, organic []domain.OrganicCandidate, now time.Time) ([]domain.FeedCandidate, error) {
	start := time.Now()
	campaigns, err := f.activeCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	feed := f.engine.Rank(organic, campaigns, now)

	var sponsored int
	for _, fc := range feed {
		if fc.IsSponsored {
			sponsored++
		}
	}
	f.metrics.ObserveFeedBuild(time.Since(start), len(feed), sponsored)
	return feed, nil
}

// activeCampaigns returns a shared slice; callers must not modify it.
func (f *FeedUseCase) activeCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	ch := f.group.DoChan("active", func() (any, error) {
		// The shared read outlives any single caller's cancellation.
		sctx := context.WithoutCancel(ctx)
		if f.timeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, f.timeout)
			defer cancel()
		}
		return f.store.ListByStatus(sctx, domain.StatusActive)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			f.logger.Error("load active campaigns", slog.Any("error", res.Err))
			return nil, fmt.Errorf("%w: list active campaigns: %v", domain.ErrStorageUnavailable, res.Err)
		}
		return res.Val.([]domain.Campaign), nil
	}
}
