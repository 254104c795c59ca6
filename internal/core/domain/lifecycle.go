package domain

import (
	"fmt"
	"time"
)

func invalidTransition(c Campaign, to Status) error {
	return fmt.Errorf("%w: campaign %s %s -> %s", ErrInvalidTransition, c.ID, c.Status, to)
}

// Pause stops spend accrual. The content stays locked to this campaign.
func (c Campaign) Pause(now time.Time) (Campaign, error) {
	next, _ := c.Advance(now)
	if !CanTransition(next.Status, StatusPaused) {
		return c, invalidTransition(next, StatusPaused)
	}
	next.Status = StatusPaused
	next.Pauses = append(next.Pauses, PauseInterval{From: now})
	return next, nil
}

// Resume restarts accrual from now. EndAt is not extended, so a campaign
// resumed after its end completes immediately.
func (c Campaign) Resume(now time.Time) (Campaign, error) {
	next, _ := c.Advance(now)
	if !CanTransition(next.Status, StatusActive) {
		return c, invalidTransition(next, StatusActive)
	}
	if next.SpentAmount >= next.TotalBudget {
		return c, fmt.Errorf("%w: campaign %s spent %d of %d", ErrBudgetExhausted, c.ID, next.SpentAmount, next.TotalBudget)
	}
	next.closePause(now)
	next.Status = StatusActive
	next, _ = next.Advance(now)
	return next, nil
}

// Cancel freezes spend at now and removes the campaign from ranking.
func (c Campaign) Cancel(now time.Time) (Campaign, error) {
	next, _ := c.Advance(now)
	if !CanTransition(next.Status, StatusCancelled) {
		return c, invalidTransition(next, StatusCancelled)
	}
	next.closePause(now)
	next.Status = StatusCancelled
	next.EndedAt = now
	next.SpentAmount = max(next.SpentAmount, next.AccruedSpend(now))
	return next, nil
}

func (c *Campaign) closePause(now time.Time) {
	if n := len(c.Pauses); n > 0 && c.Pauses[n-1].To.IsZero() {
		c.Pauses[n-1].To = now
	}
}
