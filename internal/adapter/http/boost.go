package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
)

type boostRequest struct {
	SellerID      string             `json:"seller_id"`
	ContentType   domain.ContentType `json:"content_type"`
	ContentID     string             `json:"content_id"`
	BidPerHour    int64              `json:"bid_per_hour"`
	DurationHours int                `json:"duration_hours"`
	DailyBudget   int64              `json:"daily_budget"`
}

type promotionRequest struct {
	SellerID      string             `json:"seller_id"`
	ContentType   domain.ContentType `json:"content_type"`
	ContentID     string             `json:"content_id"`
	StartAt       time.Time          `json:"start_at"`
	DurationHours int                `json:"duration_hours"`
}

type admissionRequest struct {
	SellerID    string             `json:"seller_id"`
	ContentType domain.ContentType `json:"content_type"`
	ContentID   string             `json:"content_id"`
}

type admissionResponse struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason"`
	ResetAt   time.Time `json:"reset_at,omitzero"`
	Remaining int       `json:"remaining"`
}

// seller prefers the authenticated header over the body.
func seller(r *http.Request, fromBody string) string {
	if s := r.Header.Get(sellerHeader); s != "" {
		return s
	}
	return fromBody
}

// decode reads a JSON body. Unknown content types are reported as such.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, domain.ErrInvalidContentType) {
			h.badRequest(w, err.Error())
		} else {
			h.badRequest(w, "invalid JSON")
		}
		return false
	}
	return true
}

// handleRequestBoost buys an hourly boost. It answers 201 with the receipt,
// 429 when admission rejects and 402 when the payment is declined.
func (h *Handler) handleRequestBoost(w http.ResponseWriter, r *http.Request) {
	var body boostRequest
	if !h.decode(w, r, &body) {
		return
	}
	receipt, err := h.boosts.RequestBoost(r.Context(), port.BoostRequest{
		SellerID:      seller(r, body.SellerID),
		Content:       domain.ContentRef{Type: body.ContentType, ID: body.ContentID},
		BidPerHour:    body.BidPerHour,
		DurationHours: body.DurationHours,
		DailyBudget:   body.DailyBudget,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, receipt)
}

func (h *Handler) handleSchedulePromotion(w http.ResponseWriter, r *http.Request) {
	var body promotionRequest
	if !h.decode(w, r, &body) {
		return
	}
	receipt, err := h.boosts.SchedulePromotion(r.Context(), port.PromotionRequest{
		SellerID:      seller(r, body.SellerID),
		Content:       domain.ContentRef{Type: body.ContentType, ID: body.ContentID},
		StartAt:       body.StartAt,
		DurationHours: body.DurationHours,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, receipt)
}

// handleCheckAdmission is a dry run: it reports the decision with 200 and
// records nothing.
func (h *Handler) handleCheckAdmission(w http.ResponseWriter, r *http.Request) {
	var body admissionRequest
	if !h.decode(w, r, &body) {
		return
	}
	d, err := h.boosts.CheckAdmission(r.Context(), seller(r, body.SellerID), domain.ContentRef{Type: body.ContentType, ID: body.ContentID})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, admissionResponse{
		Allowed:   d.Allowed,
		Reason:    string(d.Reason),
		ResetAt:   d.ResetAt,
		Remaining: d.Remaining,
	})
}
