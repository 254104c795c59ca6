// Package pricing maps bids to boost multipliers. Every function here is
// pure; the table is immutable after construction.
package pricing

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"boost-engine/internal/core/domain"
)

// Tier is one step of the hourly bid ladder. A bid at or above MinBid earns
// Multiplier unless a higher tier also matches.
type Tier struct {
	Name       string
	MinBid     int64
	Multiplier float64
}

// PromotionTier prices scheduled promotions lasting up to MaxDuration.
type PromotionTier struct {
	Name        string
	MaxDuration time.Duration
	Fee         int64
	Multiplier  float64
}

// Quote is the result of pricing an hourly bid.
type Quote struct {
	Tier       string
	Multiplier float64
}

// PromotionQuote is the result of pricing a scheduled promotion.
type PromotionQuote struct {
	Tier       string
	Multiplier float64
	Fee        int64
}

// DefaultTiers is the platform ladder: below 9.99/h a boost has no effect.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "basic", MinBid: 0, Multiplier: 1},
		{Name: "boost", MinBid: 999, Multiplier: 2},
		{Name: "premium", MinBid: 1499, Multiplier: 5},
		{Name: "spotlight", MinBid: 1999, Multiplier: 10},
	}
}

// DefaultPromotionTiers prices scheduled promotions by length.
func DefaultPromotionTiers() []PromotionTier {
	return []PromotionTier{
		{Name: "day", MaxDuration: 24 * time.Hour, Fee: 499, Multiplier: 2},
		{Name: "weekend", MaxDuration: 72 * time.Hour, Fee: 999, Multiplier: 3},
		{Name: "week", MaxDuration: 168 * time.Hour, Fee: 1999, Multiplier: 5},
	}
}

// DefaultMaxBid caps hourly bids at 10,000.00 so budgets stay far from
// int64 overflow.
const DefaultMaxBid int64 = 1_000_000

// Table is the tier pricing table.
type Table struct {
	minBid     int64
	maxBid     int64
	tiers      map[domain.ContentType][]Tier
	promotions []PromotionTier
}

// NewTable builds a table applying tiers to every content type, capped at
// DefaultMaxBid. Tiers and promotion tiers are sorted internally.
func NewTable(minBid int64, tiers []Tier, promotions []PromotionTier) *Table {
	t := &Table{
		minBid:     minBid,
		maxBid:     DefaultMaxBid,
		tiers:      make(map[domain.ContentType][]Tier, len(domain.ContentTypes)),
		promotions: slices.SortedFunc(slices.Values(promotions), func(a, b PromotionTier) int { return cmp.Compare(a.MaxDuration, b.MaxDuration) }),
	}
	for _, ct := range domain.ContentTypes {
		t.tiers[ct] = sortTiers(tiers)
	}
	return t
}

func (t *Table) clone() *Table {
	next := *t
	next.tiers = make(map[domain.ContentType][]Tier, len(t.tiers))
	for k, v := range t.tiers {
		next.tiers[k] = v
	}
	return &next
}

// WithContentTiers returns a copy of t using tiers for ct only.
func (t *Table) WithContentTiers(ct domain.ContentType, tiers []Tier) *Table {
	next := t.clone()
	next.tiers[ct] = sortTiers(tiers)
	return next
}

// WithMaxBid returns a copy of t rejecting hourly bids above maxBid. A
// non-positive maxBid keeps the current cap.
func (t *Table) WithMaxBid(maxBid int64) *Table {
	next := t.clone()
	if maxBid > 0 {
		next.maxBid = maxBid
	}
	return next
}

func sortTiers(tiers []Tier) []Tier {
	return slices.SortedFunc(slices.Values(tiers), func(a, b Tier) int { return cmp.Compare(a.MinBid, b.MinBid) })
}

// Price returns the tier an hourly bid falls into. The multiplier is a
// monotonic step function of the bid.
func (t *Table) Price(ct domain.ContentType, bidPerHour int64) (Quote, error) {
	if !ct.Valid() {
		return Quote{}, fmt.Errorf("%w: %d", domain.ErrInvalidContentType, int(ct))
	}
	if bidPerHour < t.minBid || bidPerHour <= 0 {
		return Quote{}, fmt.Errorf("%w: %d < %d", domain.ErrBidBelowMinimum, bidPerHour, t.minBid)
	}
	if bidPerHour > t.maxBid {
		return Quote{}, fmt.Errorf("%w: %d > %d", domain.ErrBidAboveMaximum, bidPerHour, t.maxBid)
	}
	q := Quote{Tier: "basic", Multiplier: 1}
	for _, tier := range t.tiers[ct] {
		if bidPerHour < tier.MinBid {
			break
		}
		q = Quote{Tier: tier.Name, Multiplier: tier.Multiplier}
	}
	return q, nil
}

// PricePromotion returns the flat fee for a promotion of length d.
func (t *Table) PricePromotion(d time.Duration) (PromotionQuote, error) {
	if d <= 0 {
		return PromotionQuote{}, fmt.Errorf("%w: %s", domain.ErrInvalidDuration, d)
	}
	for _, tier := range t.promotions {
		if d <= tier.MaxDuration {
			return PromotionQuote{Tier: tier.Name, Multiplier: tier.Multiplier, Fee: tier.Fee}, nil
		}
	}
	return PromotionQuote{}, fmt.Errorf("%w: %s exceeds longest promotion", domain.ErrInvalidDuration, d)
}
