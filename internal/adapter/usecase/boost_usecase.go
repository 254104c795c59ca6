package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"boost-engine/internal/core/admission"
	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
	"boost-engine/internal/core/pricing"
)

const refundTimeout = 10 * time.Second

// BoostConfig tunes the boost usecase.
type BoostConfig struct {
	// MaxBoostDuration caps hourly boosts. Zero means no cap.
	MaxBoostDuration time.Duration
	// StorageTimeout bounds every campaign store call.
	StorageTimeout time.Duration
}

// BoostDeps are the collaborators of BoostUseCase. Logger and Metrics are
// optional.
type BoostDeps struct {
	Logger    *slog.Logger
	Clock     port.Clock
	Store     port.Storage
	Admission *admission.Controller
	Pricing   *pricing.Table
	Payment   port.PaymentGateway
	Locker    port.SellerLocker
	Metrics   port.Metrics
}

// BoostUseCase implements port.BoostUseCase. Creating a campaign follows a
// fixed order: validate and price, lock the seller, admit, check content
// exclusivity, capture payment, then write the campaign together with its
// usage event. A failed write refunds the capture.
type BoostUseCase struct {
	lifecycle
	clock   port.Clock
	store   port.Storage
	admit   *admission.Controller
	prices  *pricing.Table
	payment port.PaymentGateway
	locker  port.SellerLocker
	cfg     BoostConfig
}

// NewBoostUseCase wires the boost usecase.
func NewBoostUseCase(d BoostDeps, cfg BoostConfig) *BoostUseCase {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = port.NopMetrics{}
	}
	return &BoostUseCase{
		lifecycle: lifecycle{logger: d.Logger, store: d.Store, metrics: d.Metrics, timeout: cfg.StorageTimeout},
		clock:     d.Clock,
		store:     d.Store,
		admit:     d.Admission,
		prices:    d.Pricing,
		payment:   d.Payment,
		locker:    d.Locker,
		cfg:       cfg,
	}
}

// draft is a campaign waiting for admission. A zero StartAt starts the
// campaign at admission time.
type draft struct {
	campaign    domain.Campaign
	duration    time.Duration
	description string
}

func validateCaller(sellerID string, ref domain.ContentRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(sellerID) == "" {
		return domain.ErrInvalidSeller
	}
	return nil
}

func (u *BoostUseCase) RequestBoost(ctx context.Context, req port.BoostRequest) (*port.BoostReceipt, error) {
	if err := validateCaller(req.SellerID, req.Content); err != nil {
		return nil, err
	}
	quote, err := u.prices.Price(req.Content.Type, req.BidPerHour)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(req.DurationHours) * time.Hour
	if req.DurationHours <= 0 || (u.cfg.MaxBoostDuration > 0 && duration > u.cfg.MaxBoostDuration) {
		return nil, fmt.Errorf("%w: %d hours", domain.ErrInvalidDuration, req.DurationHours)
	}
	total, ok := domain.MulCents(req.BidPerHour, int64(req.DurationHours))
	if !ok {
		return nil, fmt.Errorf("%w: %d for %dh overflows the budget", domain.ErrBidAboveMaximum, req.BidPerHour, req.DurationHours)
	}
	daily := req.DailyBudget
	switch {
	case daily < 0:
		return nil, fmt.Errorf("%w: daily budget %d", domain.ErrBidBelowMinimum, daily)
	case daily == 0:
		if daily, ok = domain.MulCents(req.BidPerHour, 24); !ok {
			return nil, fmt.Errorf("%w: %d overflows the daily budget", domain.ErrBidAboveMaximum, req.BidPerHour)
		}
	}

	return u.create(ctx, draft{
		campaign: domain.Campaign{
			SellerID:    req.SellerID,
			Content:     req.Content,
			Tier:        quote.Tier,
			Multiplier:  quote.Multiplier,
			Pricing:     domain.HourlyPricing{BidPerHour: req.BidPerHour, DailyBudget: daily},
			TotalBudget: total,
		},
		duration:    duration,
		description: fmt.Sprintf("%s boost of %s for %dh", quote.Tier, req.Content, req.DurationHours),
	})
}

func (u *BoostUseCase) SchedulePromotion(ctx context.Context, req port.PromotionRequest) (*port.BoostReceipt, error) {
	if err := validateCaller(req.SellerID, req.Content); err != nil {
		return nil, err
	}
	duration := time.Duration(req.DurationHours) * time.Hour
	quote, err := u.prices.PricePromotion(duration)
	if err != nil {
		return nil, err
	}
	if !req.StartAt.IsZero() && req.StartAt.Before(u.clock.Now()) {
		return nil, fmt.Errorf("%w: promotion starts in the past", domain.ErrInvalidDuration)
	}

	return u.create(ctx, draft{
		campaign: domain.Campaign{
			SellerID:    req.SellerID,
			Content:     req.Content,
			Tier:        quote.Tier,
			Multiplier:  quote.Multiplier,
			Pricing:     domain.FlatFeePricing{Fee: quote.Fee},
			TotalBudget: quote.Fee,
			StartAt:     req.StartAt.UTC(),
		},
		duration:    duration,
		description: fmt.Sprintf("%s promotion of %s", quote.Tier, req.Content),
	})
}

func (u *BoostUseCase) create(ctx context.Context, d draft) (*port.BoostReceipt, error) {
	c := d.campaign
	unlock, err := u.locker.Lock(ctx, c.SellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: lock seller: %v", domain.ErrStorageUnavailable, err)
	}
	defer unlock()

	now := u.clock.Now()
	decision, err := u.admit.Evaluate(ctx, c.SellerID, c.Content.Type, c.Content.ID, now)
	u.metrics.ObserveAdmission(c.Content.Type, decision.Reason)
	if err != nil {
		u.logger.Warn("admission failed",
			slog.String("seller_id", c.SellerID),
			slog.String("content", c.Content.String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	if !decision.Allowed {
		u.logger.Debug("admission rejected",
			slog.String("seller_id", c.SellerID),
			slog.String("content", c.Content.String()),
			slog.String("reason", string(decision.Reason)),
			slog.Time("reset_at", decision.ResetAt),
		)
		return nil, &domain.AdmissionError{Decision: decision}
	}

	if err = u.ensureContentFree(ctx, c.Content, now); err != nil {
		return nil, err
	}

	if c.StartAt.IsZero() || c.StartAt.Before(now) {
		c.StartAt = now
	}
	c.ID = uuid.NewString()
	c.EndAt = c.StartAt.Add(d.duration)
	c.Status = domain.StatusActive
	c.CreatedAt, c.UpdatedAt = now, now

	receipt, err := u.payment.Capture(ctx, port.PaymentRequest{
		IdempotencyKey: c.ID,
		SellerID:       c.SellerID,
		Content:        c.Content,
		Amount:         c.TotalBudget,
		Description:    d.description,
	})
	if err != nil {
		u.logger.Warn("payment capture failed",
			slog.String("seller_id", c.SellerID),
			slog.Int64("amount", c.TotalBudget),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("capture payment: %w", err)
	}

	ev := domain.UsageEvent{
		ID:         uuid.NewString(),
		SellerID:   c.SellerID,
		Content:    c.Content,
		CampaignID: c.ID,
		CreatedAt:  now,
	}
	sctx, cancel := u.storageCtx(ctx)
	err = u.store.CreateWithUsage(sctx, c, ev, u.admit.Guard(c.SellerID, c.Content, now))
	cancel()
	if err != nil {
		u.refund(ctx, c, receipt)
		var admErr *domain.AdmissionError
		switch {
		case errors.As(err, &admErr):
			u.metrics.ObserveAdmission(c.Content.Type, admErr.Decision.Reason)
			u.logger.Warn("admission revoked at write",
				slog.String("seller_id", c.SellerID),
				slog.String("content", c.Content.String()),
				slog.String("reason", string(admErr.Decision.Reason)),
			)
			return nil, err
		case errors.Is(err, domain.ErrContentAlreadyBoosted):
			return nil, err
		}
		return nil, fmt.Errorf("%w: create campaign: %v", domain.ErrStorageUnavailable, err)
	}

	u.logger.Info("campaign created",
		slog.String("campaign_id", c.ID),
		slog.String("seller_id", c.SellerID),
		slog.String("content", c.Content.String()),
		slog.String("tier", c.Tier),
		slog.Float64("multiplier", c.Multiplier),
		slog.Int64("total_budget", c.TotalBudget),
		slog.Time("end_at", c.EndAt),
	)
	return &port.BoostReceipt{
		CampaignID: c.ID,
		Tier:       c.Tier,
		Multiplier: c.Multiplier,
		TotalCost:  c.TotalBudget,
		StartAt:    c.StartAt,
		EndAt:      c.EndAt,
	}, nil
}

// ensureContentFree rejects ref while another campaign holds it. A holder
// that has run out of time or budget is completed on the spot.
func (u *BoostUseCase) ensureContentFree(ctx context.Context, ref domain.ContentRef, now time.Time) error {
	sctx, cancel := u.storageCtx(ctx)
	holder, err := u.store.FindLiveByContent(sctx, ref)
	cancel()
	switch {
	case errors.Is(err, domain.ErrCampaignNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("%w: find live campaign: %v", domain.ErrStorageUnavailable, err)
	}
	if advanced, _ := holder.Advance(now); advanced.Status.Live() {
		return fmt.Errorf("%w: %s by campaign %s", domain.ErrContentAlreadyBoosted, ref, holder.ID)
	}
	if _, err = u.apply(ctx, "", holder.ID, now, advanceOnly); err != nil {
		return fmt.Errorf("complete campaign %s: %w", holder.ID, err)
	}
	return nil
}

func (u *BoostUseCase) refund(ctx context.Context, c domain.Campaign, receipt port.PaymentReceipt) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()
	if err := u.payment.Refund(rctx, receipt); err != nil {
		u.logger.Error("refund failed",
			slog.String("campaign_id", c.ID),
			slog.String("receipt_id", receipt.ID),
			slog.Int64("amount", receipt.Amount),
			slog.Any("error", err),
		)
		return
	}
	u.logger.Info("payment refunded", slog.String("campaign_id", c.ID), slog.String("receipt_id", receipt.ID))
}

func (u *BoostUseCase) CheckAdmission(ctx context.Context, sellerID string, ref domain.ContentRef) (domain.AdmissionDecision, error) {
	return u.admit.Evaluate(ctx, sellerID, ref.Type, ref.ID, u.clock.Now())
}

// GetCampaign returns the campaign as of now. A campaign found past its end
// or budget is completed and persisted.
func (u *BoostUseCase) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	sctx, cancel := u.storageCtx(ctx)
	c, err := u.store.Get(sctx, id)
	cancel()
	if err != nil {
		return domain.Campaign{}, err
	}
	if err = u.guard(c); err != nil {
		return domain.Campaign{}, err
	}
	now := u.clock.Now()
	advanced, _ := c.Advance(now)
	if advanced.Status == c.Status {
		return advanced, nil
	}
	return u.apply(ctx, "", id, now, advanceOnly)
}

func (u *BoostUseCase) PauseCampaign(ctx context.Context, sellerID, id string) (domain.Campaign, error) {
	return u.apply(ctx, sellerID, id, u.clock.Now(), domain.Campaign.Pause)
}

func (u *BoostUseCase) ResumeCampaign(ctx context.Context, sellerID, id string) (domain.Campaign, error) {
	return u.apply(ctx, sellerID, id, u.clock.Now(), domain.Campaign.Resume)
}

func (u *BoostUseCase) CancelCampaign(ctx context.Context, sellerID, id string) (domain.Campaign, error) {
	return u.apply(ctx, sellerID, id, u.clock.Now(), domain.Campaign.Cancel)
}
