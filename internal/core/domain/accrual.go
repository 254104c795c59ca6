package domain

import (
	"math"
	"math/bits"
	"time"
)

const (
	msPerHour = int64(time.Hour / time.Millisecond)
	day       = 24 * time.Hour
)

// ActiveDuration is the time the campaign has spent accruing between StartAt
// and the earliest of now, EndAt and EndedAt, minus every pause.
func (c Campaign) ActiveDuration(now time.Time) time.Duration {
	stop := now
	if c.EndAt.Before(stop) {
		stop = c.EndAt
	}
	if !c.EndedAt.IsZero() && c.EndedAt.Before(stop) {
		stop = c.EndedAt
	}
	if !stop.After(c.StartAt) {
		return 0
	}
	active := stop.Sub(c.StartAt)
	for _, p := range c.Pauses {
		from := p.From
		if from.Before(c.StartAt) {
			from = c.StartAt
		}
		to := p.To
		if to.IsZero() || to.After(stop) {
			to = stop
		}
		if to.After(from) {
			active -= to.Sub(from)
		}
	}
	return max(active, 0)
}

// AccruedSpend recomputes spend at now from StartAt, the pauses and the
// pricing. It never mutates c and is clamped to [0, TotalBudget].
func (c Campaign) AccruedSpend(now time.Time) int64 {
	active := c.ActiveDuration(now)
	var spend int64
	switch p := c.Pricing.(type) {
	case HourlyPricing:
		spend = mulDiv(p.BidPerHour, active.Milliseconds(), msPerHour)
		if p.DailyBudget > 0 {
			days := int64(active/day) + 1
			spend = min(spend, mulDiv(p.DailyBudget, days, 1))
		}
	case FlatFeePricing:
		if window := c.EndAt.Sub(c.StartAt).Milliseconds(); window > 0 {
			spend = mulDiv(p.Fee, active.Milliseconds(), window)
		}
	}
	return min(max(spend, 0), c.TotalBudget)
}

// Advance applies automatic lifecycle rules at now: spend is recomputed and
// an Active campaign completes once now reaches EndAt or spend reaches the
// total budget. Terminal campaigns are returned unchanged. The bool reports
// whether anything differs from c.
func (c Campaign) Advance(now time.Time) (Campaign, bool) {
	if c.Status.Terminal() {
		return c, false
	}
	next := c.Clone()
	next.SpentAmount = max(c.SpentAmount, c.AccruedSpend(now))
	if c.Status == StatusActive {
		switch {
		case !now.Before(c.EndAt):
			next.Status = StatusCompleted
			next.EndedAt = c.EndAt
		case next.SpentAmount >= c.TotalBudget:
			next.Status = StatusCompleted
			next.EndedAt = now
		}
	}
	changed := next.Status != c.Status || next.SpentAmount != c.SpentAmount
	return next, changed
}

// MulCents returns a*b for non-negative amounts and false when the product
// does not fit in an int64.
func MulCents(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

// mulDiv returns a*b/c with a 128 bit intermediate product. Non-positive
// operands yield 0 and a quotient beyond int64 saturates.
func mulDiv(a, b, c int64) int64 {
	if a <= 0 || b <= 0 || c <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi >= uint64(c) {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, uint64(c))
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}
