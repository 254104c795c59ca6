package httpadapter

import (
	"net/http"
	"time"

	"boost-engine/internal/core/domain"
)

type feedRequest struct {
	// Now pins the ranking instant; zero means the server clock.
	Now        time.Time                 `json:"now"`
	Candidates []domain.OrganicCandidate `json:"candidates"`
}

type feedResponse struct {
	Now   time.Time              `json:"now"`
	Items []domain.FeedCandidate `json:"items"`
}

// handleBuildFeed ranks the posted organic candidates. Every candidate must
// reference valid content; otherwise the whole request is rejected with
// HTTP 400.
func (h *Handler) handleBuildFeed(w http.ResponseWriter, r *http.Request) {
	var body feedRequest
	if !h.decode(w, r, &body) {
		return
	}
	for _, c := range body.Candidates {
		if err := c.Content.Validate(); err != nil {
			h.badRequest(w, err.Error())
			return
		}
	}
	now := body.Now
	if now.IsZero() {
		now = h.clock.Now()
	}

	items, err := h.feed.BuildFeed(r.Context(), body.Candidates, now)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.FeedCandidate{}
	}
	writeJSON(w, h.logger, http.StatusOK, feedResponse{Now: now, Items: items})
}
