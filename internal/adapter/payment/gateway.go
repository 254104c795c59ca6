// Package payment adapts the external payment processor.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
)

// Gateway talks to the payment processor over HTTP. Calls go through a
// circuit breaker; declines do not count as failures.
type Gateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewGateway returns a gateway for baseURL. The breaker opens after
// maxFailures consecutive failures and probes again after cooldown.
func NewGateway(baseURL string, timeout time.Duration, maxFailures uint32, cooldown time.Duration) *Gateway {
	if maxFailures == 0 {
		maxFailures = 5
	}
	st := gobreaker.Settings{
		Name:    "payment",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrPaymentDeclined)
		},
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

type captureRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	SellerID       string `json:"seller_id"`
	ContentType    string `json:"content_type"`
	ContentID      string `json:"content_id"`
	Amount         int64  `json:"amount"`
	Description    string `json:"description,omitempty"`
}

type captureResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

// Capture charges the seller.
func (g *Gateway) Capture(ctx context.Context, req port.PaymentRequest) (port.PaymentReceipt, error) {
	body := captureRequest{
		IdempotencyKey: req.IdempotencyKey,
		SellerID:       req.SellerID,
		ContentType:    req.Content.Type.String(),
		ContentID:      req.Content.ID,
		Amount:         req.Amount,
		Description:    req.Description,
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		var out captureResponse
		if err := g.post(ctx, "/captures", body, &out); err != nil {
			return nil, err
		}
		return port.PaymentReceipt{ID: out.ID, Amount: out.Amount}, nil
	})
	if err != nil {
		return port.PaymentReceipt{}, g.wrap(err)
	}
	return res.(port.PaymentReceipt), nil
}

// Refund reverses a capture.
func (g *Gateway) Refund(ctx context.Context, receipt port.PaymentReceipt) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		path := "/captures/" + url.PathEscape(receipt.ID) + "/refund"
		return nil, g.post(ctx, path, map[string]int64{"amount": receipt.Amount}, nil)
	})
	if err != nil {
		return g.wrap(err)
	}
	return nil
}

func (g *Gateway) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}
	return err
}

func (g *Gateway) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal payment request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		var decline captureResponse
		_ = json.NewDecoder(resp.Body).Decode(&decline)
		return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, decline.Reason)
	case resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", domain.ErrPaymentUnavailable, resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("payment request %s: unexpected status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode payment response: %w", err)
	}
	return nil
}
