package domain

import "time"

// AdmissionReason names the outcome of an admission evaluation.
type AdmissionReason string

const (
	ReasonAllowed               AdmissionReason = "allowed"
	ReasonInvalidContentType    AdmissionReason = "invalid_content_type"
	ReasonInvalidSeller         AdmissionReason = "invalid_seller"
	ReasonWindowCapExceeded     AdmissionReason = "window_cap_exceeded"
	ReasonCooldownActive        AdmissionReason = "cooldown_active"
	ReasonContentCooldownActive AdmissionReason = "content_cooldown_active"
	ReasonDailyCapExceeded      AdmissionReason = "daily_cap_exceeded"
	ReasonStorageUnavailable    AdmissionReason = "storage_unavailable"
)

// Err maps a reason to its sentinel error. ReasonAllowed maps to nil.
func (r AdmissionReason) Err() error {
	switch r {
	case ReasonAllowed:
		return nil
	case ReasonInvalidContentType:
		return ErrInvalidContentType
	case ReasonInvalidSeller:
		return ErrInvalidSeller
	case ReasonWindowCapExceeded:
		return ErrWindowCapExceeded
	case ReasonCooldownActive:
		return ErrCooldownActive
	case ReasonContentCooldownActive:
		return ErrContentCooldownActive
	case ReasonDailyCapExceeded:
		return ErrDailyCapExceeded
	default:
		return ErrStorageUnavailable
	}
}

// AdmissionDecision is the result of evaluating a boost request. Remaining
// is maxBoosts minus the current per-type window count.
type AdmissionDecision struct {
	Allowed   bool
	Reason    AdmissionReason
	ResetAt   time.Time
	Remaining int
}
