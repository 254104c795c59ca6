package domain

import (
	"time"
)

// UsageEvent records that a boost was admitted for a seller. Events are
// append-only; CampaignID is informational and carries no lifecycle.
type UsageEvent struct {
	ID         string
	SellerID   string
	Content    ContentRef
	CampaignID string
	CreatedAt  time.Time
}

// UsageGuard re-validates admission inside a store's write path, after the
// store has serialized writers of the seller. Check receives the seller's
// events created after Since in ascending order; a non-nil error aborts the
// write. The zero UsageGuard checks nothing.
type UsageGuard struct {
	Since time.Time
	Check func(events []UsageEvent) error
}

// Enabled reports whether g carries a check.
func (g UsageGuard) Enabled() bool { return g.Check != nil }
