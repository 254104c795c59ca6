package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
)

var (
	_ port.PaymentGateway = (*Gateway)(nil)
	_ port.PaymentGateway = (*Local)(nil)
)

func request() port.PaymentRequest {
	return port.PaymentRequest{
		IdempotencyKey: "key-1",
		SellerID:       "s",
		Content:        domain.ContentRef{Type: domain.ContentTypePost, ID: "p"},
		Amount:         2997,
	}
}

func TestCaptureSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/captures", r.URL.Path)
		var body captureRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key-1", body.IdempotencyKey)
		assert.Equal(t, "post", body.ContentType)
		assert.Equal(t, int64(2997), body.Amount)
		_ = json.NewEncoder(w).Encode(captureResponse{ID: "cap-1", Amount: body.Amount})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second, 3, time.Minute)
	receipt, err := g.Capture(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, port.PaymentReceipt{ID: "cap-1", Amount: 2997}, receipt)
}

func TestDeclineDoesNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(captureResponse{Reason: "insufficient funds"})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second, 2, time.Minute)
	for i := 0; i < 5; i++ {
		_, err := g.Capture(context.Background(), request())
		assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second, 2, time.Minute)
	for i := 0; i < 4; i++ {
		_, err := g.Capture(context.Background(), request())
		assert.ErrorIs(t, err, domain.ErrPaymentUnavailable)
	}
	assert.Equal(t, int32(2), calls.Load(), "open breaker short-circuits")
}

func TestRefund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/captures/cap-1/refund", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second, 2, time.Minute)
	require.NoError(t, g.Refund(context.Background(), port.PaymentReceipt{ID: "cap-1", Amount: 10}))
}

func TestLocalTallies(t *testing.T) {
	l := NewLocal()
	receipt, err := l.Capture(context.Background(), request())
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID)
	require.NoError(t, l.Refund(context.Background(), receipt))

	captured, refunded := l.Totals()
	assert.Equal(t, int64(2997), captured)
	assert.Equal(t, int64(2997), refunded)
}
