package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"boost-engine/internal/core/domain"
)

type errorResponse struct {
	Error     string    `json:"error"`
	Reason    string    `json:"reason,omitempty"`
	ResetAt   time.Time `json:"reset_at,omitzero"`
	Remaining *int      `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response error", slog.Any("error", err))
	}
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidContentType),
		errors.Is(err, domain.ErrInvalidSeller),
		errors.Is(err, domain.ErrBidBelowMinimum),
		errors.Is(err, domain.ErrBidAboveMaximum),
		errors.Is(err, domain.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrCampaignNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrContentAlreadyBoosted),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrBudgetExhausted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, domain.ErrPaymentUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Admission rejections become 429 with a
// Retry-After header; internal errors are logged and not echoed back.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var admErr *domain.AdmissionError
	if errors.As(err, &admErr) {
		d := admErr.Decision
		if !d.ResetAt.IsZero() {
			wait := d.ResetAt.Sub(h.clock.Now()).Seconds()
			w.Header().Set("Retry-After", strconv.Itoa(max(int(math.Ceil(wait)), 0)))
		}
		writeJSON(w, h.logger, http.StatusTooManyRequests, errorResponse{
			Error:     err.Error(),
			Reason:    string(d.Reason),
			ResetAt:   d.ResetAt,
			Remaining: &d.Remaining,
		})
		return
	}

	status := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, h.logger, status, errorResponse{Error: msg})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: msg})
}
