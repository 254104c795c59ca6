package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
)

// transitionFunc computes the next campaign state at now.
type transitionFunc func(c domain.Campaign, now time.Time) (domain.Campaign, error)

// lifecycle persists campaign state changes. It is shared by the boost
// usecase and the sweeper so both guard invariants and report transitions
// the same way.
type lifecycle struct {
	logger  *slog.Logger
	store   port.CampaignStore
	metrics port.Metrics
	timeout time.Duration
}

func (l lifecycle) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}

// guard reports persisted state breaking campaign invariants. Such a
// campaign is never acted upon.
func (l lifecycle) guard(c domain.Campaign) error {
	err := c.CheckInvariants()
	if err == nil {
		return nil
	}
	l.metrics.IncInvariantViolation()
	l.logger.Error("campaign invariant violated",
		slog.String("campaign_id", c.ID),
		slog.String("status", string(c.Status)),
		slog.Int64("spent", c.SpentAmount),
		slog.Int64("total_budget", c.TotalBudget),
		slog.Any("error", err),
	)
	return err
}

// apply runs op on campaign id under the store's per-campaign lock. The
// campaign is advanced to now first; when op is rejected but advancing
// alone changed the campaign, the advanced state is still persisted and
// op's error is returned. A non-empty sellerID must own the campaign.
func (l lifecycle) apply(ctx context.Context, sellerID, id string, now time.Time, op transitionFunc) (domain.Campaign, error) {
	ctx, cancel := l.storageCtx(ctx)
	defer cancel()

	var (
		from  domain.Status
		opErr error
	)
	updated, err := l.store.Update(ctx, id, func(c *domain.Campaign) error {
		if sellerID != "" && c.SellerID != sellerID {
			return fmt.Errorf("%w: %s", domain.ErrCampaignNotFound, id)
		}
		if err := l.guard(*c); err != nil {
			return err
		}
		from = c.Status
		advanced, changed := c.Advance(now)
		next, err := op(advanced, now)
		if err != nil {
			if !changed {
				return err
			}
			opErr = err
			next = advanced
		}
		next.UpdatedAt = now
		*c = next
		return nil
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	if from != updated.Status {
		l.metrics.ObserveTransition(from, updated.Status)
		l.logger.Info("campaign transitioned",
			slog.String("campaign_id", updated.ID),
			slog.String("from", string(from)),
			slog.String("to", string(updated.Status)),
			slog.Int64("spent", updated.SpentAmount),
		)
	}
	return updated, opErr
}

func advanceOnly(c domain.Campaign, _ time.Time) (domain.Campaign, error) { return c, nil }
