package port

import (
	"context"
	"time"

	"boost-engine/internal/core/domain"
)

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// PaymentRequest asks the payment processor to capture Amount from the
// seller. IdempotencyKey is unique per boost attempt.
type PaymentRequest struct {
	IdempotencyKey string
	SellerID       string
	Content        domain.ContentRef
	Amount         int64
	Description    string
}

// PaymentReceipt identifies a successful capture.
type PaymentReceipt struct {
	ID     string
	Amount int64
}

// PaymentGateway is the external payment processor. Capture returns an
// error wrapping domain.ErrPaymentDeclined when the processor refuses.
type PaymentGateway interface {
	Capture(ctx context.Context, req PaymentRequest) (PaymentReceipt, error)
	Refund(ctx context.Context, receipt PaymentReceipt) error
}

// SellerLocker serializes admission per seller. The returned unlock must be
// called exactly once.
type SellerLocker interface {
	Lock(ctx context.Context, sellerID string) (unlock func(), err error)
}

// Metrics receives engine telemetry. Implementations must tolerate
// concurrent calls.
type Metrics interface {
	ObserveAdmission(contentType domain.ContentType, reason domain.AdmissionReason)
	ObserveTransition(from, to domain.Status)
	ObserveFeedBuild(duration time.Duration, candidates, sponsored int)
	IncInvariantViolation()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ObserveAdmission(domain.ContentType, domain.AdmissionReason) {}
func (NopMetrics) ObserveTransition(domain.Status, domain.Status)              {}
func (NopMetrics) ObserveFeedBuild(time.Duration, int, int)                    {}
func (NopMetrics) IncInvariantViolation()                                      {}
