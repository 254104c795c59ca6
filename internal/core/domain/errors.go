package domain

import (
	"errors"
	"fmt"
	"time"
)

// Admission rejections. All of them are recoverable after ResetAt.
var (
	ErrInvalidContentType    = errors.New("invalid content type")
	ErrWindowCapExceeded     = errors.New("window cap exceeded")
	ErrCooldownActive        = errors.New("cooldown active")
	ErrContentCooldownActive = errors.New("content cooldown active")
	ErrDailyCapExceeded      = errors.New("daily cap exceeded")
)

// Lifecycle and request errors. The caller should refetch state and retry.
var (
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrBudgetExhausted       = errors.New("budget exhausted")
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrContentAlreadyBoosted = errors.New("content already boosted")
	ErrBidBelowMinimum       = errors.New("bid below platform minimum")
	ErrBidAboveMaximum       = errors.New("bid above platform maximum")
	ErrInvalidDuration       = errors.New("invalid duration")
	ErrInvalidSeller         = errors.New("invalid seller")
)

// ErrStorageUnavailable is transient; admission fails closed on it.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Payment collaborator outcomes. A declined payment is final for that
// attempt; an unavailable processor may be retried.
var (
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrPaymentUnavailable = errors.New("payment processor unavailable")
)

// ErrInvariantViolation marks persisted state that breaks campaign
// invariants. It is a bug upstream, never a caller mistake.
var ErrInvariantViolation = errors.New("invariant violation")

// AdmissionError carries a rejecting AdmissionDecision. It unwraps to the
// sentinel matching the decision reason.
type AdmissionError struct {
	Decision AdmissionDecision
}

func (e *AdmissionError) Error() string {
	if e.Decision.ResetAt.IsZero() {
		return e.Decision.Reason.Err().Error()
	}
	return fmt.Sprintf("%v: retry at %s", e.Decision.Reason.Err(), e.Decision.ResetAt.UTC().Format(time.RFC3339))
}

func (e *AdmissionError) Unwrap() error {
	return e.Decision.Reason.Err()
}
