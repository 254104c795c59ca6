package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"boost-engine/internal/core/port"
)

// Local approves every capture. It stands in for the processor in
// development and keeps a tally for inspection.
type Local struct {
	mu       sync.Mutex
	captured int64
	refunded int64
}

// NewLocal returns an approve-all gateway.
func NewLocal() *Local { return &Local{} }

func (l *Local) Capture(ctx context.Context, req port.PaymentRequest) (port.PaymentReceipt, error) {
	if err := ctx.Err(); err != nil {
		return port.PaymentReceipt{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.captured += req.Amount
	return port.PaymentReceipt{ID: uuid.NewString(), Amount: req.Amount}, nil
}

func (l *Local) Refund(_ context.Context, receipt port.PaymentReceipt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refunded += receipt.Amount
	return nil
}

// Totals returns the captured and refunded sums.
func (l *Local) Totals() (captured, refunded int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.captured, l.refunded
}
