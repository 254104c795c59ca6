package httpadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"boost-engine/internal/core/domain"
)

type pauseView struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to,omitzero"`
}

type campaignView struct {
	ID          string            `json:"id"`
	SellerID    string            `json:"seller_id"`
	Content     domain.ContentRef `json:"content"`
	Tier        string            `json:"tier"`
	Multiplier  float64           `json:"multiplier"`
	PricingKind string            `json:"pricing_kind"`
	BidPerHour  int64             `json:"bid_per_hour,omitempty"`
	DailyBudget int64             `json:"daily_budget,omitempty"`
	TotalBudget int64             `json:"total_budget"`
	SpentAmount int64             `json:"spent_amount"`
	StartAt     time.Time         `json:"start_at"`
	EndAt       time.Time         `json:"end_at"`
	Status      domain.Status     `json:"status"`
	Pauses      []pauseView       `json:"pauses,omitempty"`
	EndedAt     time.Time         `json:"ended_at,omitzero"`
	CreatedAt   time.Time         `json:"created_at"`
}

func viewOf(c domain.Campaign) campaignView {
	v := campaignView{
		ID:          c.ID,
		SellerID:    c.SellerID,
		Content:     c.Content,
		Tier:        c.Tier,
		Multiplier:  c.Multiplier,
		PricingKind: string(c.Pricing.Kind()),
		BidPerHour:  c.BidPerHour(),
		DailyBudget: c.DailyBudget(),
		TotalBudget: c.TotalBudget,
		SpentAmount: c.SpentAmount,
		StartAt:     c.StartAt,
		EndAt:       c.EndAt,
		Status:      c.Status,
		EndedAt:     c.EndedAt,
		CreatedAt:   c.CreatedAt,
	}
	for _, p := range c.Pauses {
		v.Pauses = append(v.Pauses, pauseView(p))
	}
	return v
}

// handleGetCampaign returns the campaign with spend accrued to now.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.boosts.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, viewOf(c))
}

type campaignAction func(ctx context.Context, sellerID, id string) (domain.Campaign, error)

// sellerAction runs act on behalf of the seller in the X-Seller-ID header.
// A missing header is rejected so the ownership check is never skipped.
func (h *Handler) sellerAction(act campaignAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID := r.Header.Get(sellerHeader)
		if sellerID == "" {
			h.badRequest(w, "missing "+sellerHeader+" header")
			return
		}
		h.runAction(w, r, act, sellerID)
	}
}

func (h *Handler) runAction(w http.ResponseWriter, r *http.Request, act campaignAction, sellerID string) {
	c, err := act(r.Context(), sellerID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, viewOf(c))
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.sellerAction(h.boosts.PauseCampaign)(w, r)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.sellerAction(h.boosts.ResumeCampaign)(w, r)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.sellerAction(h.boosts.CancelCampaign)(w, r)
}

// handleAdminCancel cancels any campaign regardless of its owner.
func (h *Handler) handleAdminCancel(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, h.boosts.CancelCampaign, "")
}
