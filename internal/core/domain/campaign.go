package domain

import (
	"fmt"
	"slices"
	"time"
)

// Status is the lifecycle state of a Campaign.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Live reports whether the campaign still holds its content exclusively.
func (s Status) Live() bool {
	return s == StatusActive || s == StatusPaused
}

var transitions = map[Status][]Status{
	StatusActive: {StatusPaused, StatusCompleted, StatusCancelled},
	StatusPaused: {StatusActive, StatusCancelled},
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// PricingKind discriminates the two pricing shapes.
type PricingKind string

const (
	PricingHourly  PricingKind = "hourly"
	PricingFlatFee PricingKind = "flat_fee"
)

// Pricing is a closed union: HourlyPricing or FlatFeePricing.
type Pricing interface {
	Kind() PricingKind
	sealed()
}

// HourlyPricing drives boosts of live content. Spend accrues at BidPerHour
// and is capped per day by DailyBudget.
type HourlyPricing struct {
	BidPerHour  int64
	DailyBudget int64
}

func (HourlyPricing) Kind() PricingKind { return PricingHourly }
func (HourlyPricing) sealed()           {}

// FlatFeePricing drives scheduled promotions: a one-time Fee spread over
// the scheduled window, with no daily component.
type FlatFeePricing struct {
	Fee int64
}

func (FlatFeePricing) Kind() PricingKind { return PricingFlatFee }
func (FlatFeePricing) sealed()           {}

// PauseInterval is a span during which the campaign did not accrue spend.
// A zero To means the pause is still open.
type PauseInterval struct {
	From time.Time
	To   time.Time
}

// Campaign is a paid promotion of one ContentRef. Amounts are in integer
// minor units (cents). Multiplier is fixed at creation.
type Campaign struct {
	ID          string
	SellerID    string
	Content     ContentRef
	Tier        string
	Multiplier  float64
	Pricing     Pricing
	TotalBudget int64
	SpentAmount int64
	StartAt     time.Time
	EndAt       time.Time
	Status      Status
	Pauses      []PauseInterval
	// EndedAt is set once the campaign reaches a terminal status.
	EndedAt   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no mutable state with c.
func (c Campaign) Clone() Campaign {
	c.Pauses = slices.Clone(c.Pauses)
	return c
}

// BidPerHour is zero for flat fee campaigns.
func (c Campaign) BidPerHour() int64 {
	if p, ok := c.Pricing.(HourlyPricing); ok {
		return p.BidPerHour
	}
	return 0
}

// DailyBudget is zero for flat fee campaigns.
func (c Campaign) DailyBudget() int64 {
	if p, ok := c.Pricing.(HourlyPricing); ok {
		return p.DailyBudget
	}
	return 0
}

// CheckInvariants validates persisted state.
func (c Campaign) CheckInvariants() error {
	switch {
	case c.Pricing == nil:
		return fmt.Errorf("%w: campaign %s has no pricing", ErrInvariantViolation, c.ID)
	case c.SpentAmount < 0:
		return fmt.Errorf("%w: campaign %s spent %d < 0", ErrInvariantViolation, c.ID, c.SpentAmount)
	case c.SpentAmount > c.TotalBudget:
		return fmt.Errorf("%w: campaign %s spent %d > total budget %d", ErrInvariantViolation, c.ID, c.SpentAmount, c.TotalBudget)
	case !c.EndAt.After(c.StartAt):
		return fmt.Errorf("%w: campaign %s ends before it starts", ErrInvariantViolation, c.ID)
	}
	return nil
}

// BoostingAt reports whether the campaign multiplies its content's score at
// now. Callers should Advance first so expiry is taken into account.
func (c Campaign) BoostingAt(now time.Time) bool {
	return c.Status == StatusActive && !now.Before(c.StartAt) && now.Before(c.EndAt)
}
