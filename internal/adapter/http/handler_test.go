package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"boost-engine/internal/adapter/clock"
	"boost-engine/internal/adapter/memory"
	"boost-engine/internal/adapter/metrics"
	"boost-engine/internal/adapter/payment"
	"boost-engine/internal/adapter/usecase"
	"boost-engine/internal/core/admission"
	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
	"boost-engine/internal/core/port/mocks"
	"boost-engine/internal/core/pricing"
	"boost-engine/internal/core/ranking"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type server struct {
	clock   *clock.Manual
	handler http.Handler
}

func newServer(t *testing.T, pay port.PaymentGateway) *server {
	t.Helper()
	if pay == nil {
		pay = payment.NewLocal()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewManual(t0)
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(reg)

	boosts := usecase.NewBoostUseCase(usecase.BoostDeps{
		Logger:    logger,
		Clock:     clk,
		Store:     store,
		Admission: admission.NewController(store, admission.DefaultConfig(), time.Second),
		Pricing:   pricing.NewTable(100, pricing.DefaultTiers(), pricing.DefaultPromotionTiers()),
		Payment:   pay,
		Locker:    memory.NewSellerLocker(),
		Metrics:   m,
	}, usecase.BoostConfig{StorageTimeout: time.Second})
	feed := usecase.NewFeedUseCase(logger, store, ranking.NewEngine(), m, time.Second)

	h := NewHandler(boosts, feed, clk, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)
	return &server{clock: clk, handler: h.Router()}
}

func (s *server) do(t *testing.T, method, path, sellerID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if sellerID != "" {
		req.Header.Set(sellerHeader, sellerID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func postBoost(id string) map[string]any {
	return map[string]any{"content_type": "post", "content_id": id, "bid_per_hour": 999, "duration_hours": 2}
}

func TestBoostLifecycle(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/boosts", "s1", postBoost("p1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	receipt := decodeBody[port.BoostReceipt](t, rec)
	assert.Equal(t, 2.0, receipt.Multiplier)
	assert.Equal(t, int64(1998), receipt.TotalCost)

	s.clock.Advance(30 * time.Minute)
	path := "/api/v1/campaigns/" + receipt.CampaignID
	rec = s.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeBody[campaignView](t, rec)
	assert.Equal(t, domain.StatusActive, view.Status)
	assert.Equal(t, int64(499), view.SpentAmount)
	assert.Equal(t, "hourly", view.PricingKind)

	rec = s.do(t, http.MethodPost, path+"/pause", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, path+"/pause", "intruder", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, path+"/pause", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusPaused, decodeBody[campaignView](t, rec).Status)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/campaigns/"+receipt.CampaignID+"/cancel", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusCancelled, decodeBody[campaignView](t, rec).Status)

	rec = s.do(t, http.MethodPost, path+"/resume", "s1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/campaigns/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmissionRejectionIsTooManyRequests(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/boosts", "s1", postBoost("p1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/boosts", "s1", postBoost("p2"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "180", rec.Header().Get("Retry-After"))
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, string(domain.ReasonCooldownActive), body.Reason)
	assert.Equal(t, t0.Add(3*time.Minute), body.ResetAt)
	require.NotNil(t, body.Remaining)
	assert.Equal(t, 4, *body.Remaining)
}

func TestBoostValidation(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/boosts", "s1", map[string]any{"content_type": "story", "content_id": "x", "bid_per_hour": 999, "duration_hours": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid content type")

	body := postBoost("p1")
	body["bid_per_hour"] = 10
	rec = s.do(t, http.MethodPost, "/api/v1/boosts", "s1", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/boosts", "", postBoost("p1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/boosts", strings.NewReader("{"))
	r := httptest.NewRecorder()
	s.handler.ServeHTTP(r, req)
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestPaymentDeclined(t *testing.T) {
	pay := mocks.NewMockPaymentGateway(t)
	pay.EXPECT().Capture(mock.Anything, mock.Anything).
		Return(port.PaymentReceipt{}, fmt.Errorf("%w: card expired", domain.ErrPaymentDeclined))
	s := newServer(t, pay)

	rec := s.do(t, http.MethodPost, "/api/v1/boosts", "s1", postBoost("p1"))
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestSchedulePromotionAndCheckAdmission(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/admission/check", "s1", map[string]any{"content_type": "profile", "content_id": "me"})
	require.Equal(t, http.StatusOK, rec.Code)
	dry := decodeBody[admissionResponse](t, rec)
	assert.True(t, dry.Allowed)
	assert.Equal(t, 1, dry.Remaining)

	rec = s.do(t, http.MethodPost, "/api/v1/promotions", "s1", map[string]any{
		"content_type": "profile", "content_id": "me", "start_at": t0.Add(time.Hour), "duration_hours": 72,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	receipt := decodeBody[port.BoostReceipt](t, rec)
	assert.Equal(t, "weekend", receipt.Tier)
	assert.Equal(t, int64(999), receipt.TotalCost)

	rec = s.do(t, http.MethodPost, "/api/v1/admission/check", "s1", map[string]any{"content_type": "profile", "content_id": "other"})
	require.Equal(t, http.StatusOK, rec.Code)
	dry = decodeBody[admissionResponse](t, rec)
	assert.False(t, dry.Allowed)
	assert.Equal(t, string(domain.ReasonWindowCapExceeded), dry.Reason)
}

func TestBuildFeed(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/boosts", "s1", map[string]any{
		"content_type": "live_stream", "content_id": "l1", "bid_per_hour": 1499, "duration_hours": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/feed", "", map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"content_type": "post", "content_id": "p1"}, "organic_score": 100},
			{"content": map[string]any{"content_type": "live_stream", "content_id": "l1"}, "organic_score": 50},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	feed := decodeBody[feedResponse](t, rec)
	assert.Equal(t, t0, feed.Now)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "l1", feed.Items[0].Content.ID)
	assert.True(t, feed.Items[0].IsSponsored)
	assert.Equal(t, 250.0, feed.Items[0].EffectiveScore)
	assert.Equal(t, 2, feed.Items[1].Position)

	rec = s.do(t, http.MethodPost, "/api/v1/feed", "", map[string]any{
		"candidates": []map[string]any{{"content": map[string]any{"content_type": "post"}, "organic_score": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/feed", "", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[feedResponse](t, rec).Items)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, nil)
	s.do(t, http.MethodPost, "/api/v1/boosts", "s1", postBoost("p1"))

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `boost_engine_admission_decisions_total{content_type="post",reason="allowed"} 1`)
}

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		domain.ErrInvalidDuration:                               http.StatusBadRequest,
		domain.ErrBidAboveMaximum:                               http.StatusBadRequest,
		domain.ErrPaymentDeclined:                               http.StatusPaymentRequired,
		fmt.Errorf("wrapped: %w", domain.ErrCampaignNotFound):   http.StatusNotFound,
		domain.ErrContentAlreadyBoosted:                         http.StatusConflict,
		domain.ErrBudgetExhausted:                               http.StatusConflict,
		fmt.Errorf("%w: timeout", domain.ErrStorageUnavailable): http.StatusServiceUnavailable,
		domain.ErrPaymentUnavailable:                            http.StatusServiceUnavailable,
		domain.ErrInvariantViolation:                            http.StatusInternalServerError,
		errors.New("boom"):                                      http.StatusInternalServerError,
		context.DeadlineExceeded:                                http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusOf(err), err.Error())
	}
}
