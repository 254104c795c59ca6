package port

import (
	"context"
	"time"

	"boost-engine/internal/core/domain"
)

// BoostUseCase defines the seller-facing operations of the engine. It is
// the primary port into the application domain.
type BoostUseCase interface {
	// RequestBoost admits, prices, charges and creates an hourly boost.
	// Rejections are returned as *domain.AdmissionError.
	RequestBoost(ctx context.Context, req BoostRequest) (*BoostReceipt, error)
	// SchedulePromotion does the same for a flat fee promotion that starts
	// at req.StartAt.
	SchedulePromotion(ctx context.Context, req PromotionRequest) (*BoostReceipt, error)
	// CheckAdmission evaluates admission without recording anything.
	CheckAdmission(ctx context.Context, sellerID string, ref domain.ContentRef) (domain.AdmissionDecision, error)

	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	// PauseCampaign, ResumeCampaign and CancelCampaign act on behalf of
	// sellerID, which must own the campaign. An empty sellerID is an
	// administrative action and skips the ownership check.
	PauseCampaign(ctx context.Context, sellerID, id string) (domain.Campaign, error)
	ResumeCampaign(ctx context.Context, sellerID, id string) (domain.Campaign, error)
	CancelCampaign(ctx context.Context, sellerID, id string) (domain.Campaign, error)
}

// FeedUseCase blends sponsored and organic content.
type FeedUseCase interface {
	BuildFeed(ctx context.Context, organic []domain.OrganicCandidate, now time.Time) ([]domain.FeedCandidate, error)
}

// BoostRequest asks for an hourly boost. DailyBudget is optional; zero
// means a full day of spend at the bid.
type BoostRequest struct {
	SellerID      string
	Content       domain.ContentRef
	BidPerHour    int64
	DurationHours int
	DailyBudget   int64
}

// PromotionRequest asks for a scheduled flat fee promotion.
type PromotionRequest struct {
	SellerID      string
	Content       domain.ContentRef
	StartAt       time.Time
	DurationHours int
}

// BoostReceipt describes a created campaign.
type BoostReceipt struct {
	CampaignID string    `json:"campaign_id"`
	Tier       string    `json:"tier"`
	Multiplier float64   `json:"multiplier"`
	TotalCost  int64     `json:"total_cost"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
}
