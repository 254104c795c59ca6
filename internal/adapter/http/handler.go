package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"boost-engine/internal/core/port"
)

// sellerHeader carries the authenticated seller id, set by the gateway in
// front of this service.
const sellerHeader = "X-Seller-ID"

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP exposing the boost and feed usecases. Routes are registered on a
// chi.Router.
type Handler struct {
	boosts port.BoostUseCase
	feed   port.FeedUseCase
	clock  port.Clock
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. A nil metrics
// handler leaves /metrics unrouted.
func NewHandler(boosts port.BoostUseCase, feed port.FeedUseCase, clock port.Clock, metrics http.Handler, logger *slog.Logger) *Handler {
	h := &Handler{boosts: boosts, feed: feed, clock: clock, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/boosts", h.handleRequestBoost)
		r.Post("/promotions", h.handleSchedulePromotion)
		r.Post("/admission/check", h.handleCheckAdmission)

		r.Route("/campaigns/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetCampaign)
			r.Post("/pause", h.handlePause)
			r.Post("/resume", h.handleResume)
			r.Post("/cancel", h.handleCancel)
		})
		r.Post("/admin/campaigns/{id}/cancel", h.handleAdminCancel)

		r.Post("/feed", h.handleBuildFeed)
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
