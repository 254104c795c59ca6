package port

import (
	"context"
	"time"

	"boost-engine/internal/core/domain"
)

// UsageLedger is the append-only history of admitted boosts. Writes happen
// only through CampaignStore.CreateWithUsage so a campaign and its usage
// event never diverge.
type UsageLedger interface {
	// ListSince returns the seller's events with CreatedAt after since,
	// ordered by CreatedAt ascending. The slice is a consistent snapshot.
	ListSince(ctx context.Context, sellerID string, since time.Time) ([]domain.UsageEvent, error)
	// Prune deletes events created before cutoff and returns how many were
	// removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// CampaignStore persists campaigns. Implementations must be safe for
// concurrent use and serialize Update per campaign id.
type CampaignStore interface {
	// CreateWithUsage stores the campaign and its usage event atomically.
	// Writers of one seller are serialized across every process sharing
	// the backend, and guard runs inside that critical section, so a
	// rejection there leaves nothing written. It fails with
	// domain.ErrContentAlreadyBoosted when another live campaign references
	// the same content.
	CreateWithUsage(ctx context.Context, c domain.Campaign, ev domain.UsageEvent, guard domain.UsageGuard) error
	// Get returns domain.ErrCampaignNotFound for unknown ids.
	Get(ctx context.Context, id string) (domain.Campaign, error)
	// Update applies fn to the current campaign under a per-campaign lock
	// and persists the result unless fn fails.
	Update(ctx context.Context, id string, fn func(*domain.Campaign) error) (domain.Campaign, error)
	// ListByStatus returns campaigns in any of the given statuses ordered by
	// id.
	ListByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.Campaign, error)
	// FindLiveByContent returns the live (active or paused) campaign for
	// ref, or domain.ErrCampaignNotFound.
	FindLiveByContent(ctx context.Context, ref domain.ContentRef) (domain.Campaign, error)
}

// Storage bundles the ledger and the campaign store, which share a backend.
type Storage interface {
	UsageLedger
	CampaignStore
}
