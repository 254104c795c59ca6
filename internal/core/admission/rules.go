package admission

import (
	"time"

	"boost-engine/internal/core/domain"
)

// Request is the input every rule evaluates.
type Request struct {
	SellerID string
	Content  domain.ContentRef
	Now      time.Time
}

// History is a ledger snapshot for one seller, ordered by CreatedAt.
type History []domain.UsageEvent

// since returns events created strictly after t, optionally filtered.
// Windows are half-open, (now-window, now]: an event exactly one window old
// no longer counts, so a rejection's ResetAt is the first admissible instant.
func (h History) since(t time.Time, keep func(domain.UsageEvent) bool) []domain.UsageEvent {
	var out []domain.UsageEvent
	for _, ev := range h {
		if ev.CreatedAt.After(t) && (keep == nil || keep(ev)) {
			out = append(out, ev)
		}
	}
	return out
}

// last returns the most recent event matching keep.
func (h History) last(keep func(domain.UsageEvent) bool) (domain.UsageEvent, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if keep(h[i]) {
			return h[i], true
		}
	}
	return domain.UsageEvent{}, false
}

// Rule is one named admission check. Check returns a rejecting decision and
// true when the request must be refused.
type Rule interface {
	Name() domain.AdmissionReason
	Lookback() time.Duration
	Check(req Request, h History) (domain.AdmissionDecision, bool)
}

func reject(reason domain.AdmissionReason, resetAt time.Time) (domain.AdmissionDecision, bool) {
	return domain.AdmissionDecision{Reason: reason, ResetAt: resetAt}, true
}

// capReset is when a window holding counted (ascending) events drops below
// limit again.
func capReset(counted []domain.UsageEvent, limit int, window time.Duration) time.Time {
	return counted[len(counted)-limit].CreatedAt.Add(window)
}

// WindowCapRule limits boosts per content type within a sliding window.
type WindowCapRule struct {
	Limits map[domain.ContentType]Limit
}

func (WindowCapRule) Name() domain.AdmissionReason { return domain.ReasonWindowCapExceeded }

func (r WindowCapRule) Lookback() time.Duration {
	var d time.Duration
	for _, l := range r.Limits {
		d = max(d, l.Window)
	}
	return d
}

func (r WindowCapRule) Check(req Request, h History) (domain.AdmissionDecision, bool) {
	limit := r.Limits[req.Content.Type]
	counted := h.since(req.Now.Add(-limit.Window), sameType(req.Content.Type))
	if limit.MaxBoosts > 0 && len(counted) >= limit.MaxBoosts {
		return reject(r.Name(), capReset(counted, limit.MaxBoosts, limit.Window))
	}
	return domain.AdmissionDecision{}, false
}

// CooldownRule enforces a gap since the seller's latest boost of the same
// content type.
type CooldownRule struct {
	Limits map[domain.ContentType]Limit
}

func (CooldownRule) Name() domain.AdmissionReason { return domain.ReasonCooldownActive }

func (r CooldownRule) Lookback() time.Duration {
	var d time.Duration
	for _, l := range r.Limits {
		d = max(d, l.Cooldown)
	}
	return d
}

func (r CooldownRule) Check(req Request, h History) (domain.AdmissionDecision, bool) {
	cooldown := r.Limits[req.Content.Type].Cooldown
	last, ok := h.last(sameType(req.Content.Type))
	if ok && req.Now.Before(last.CreatedAt.Add(cooldown)) {
		return reject(r.Name(), last.CreatedAt.Add(cooldown))
	}
	return domain.AdmissionDecision{}, false
}

// ContentCooldownRule enforces a gap since the latest boost of the same
// content, whatever the type-level counters say.
type ContentCooldownRule struct {
	Cooldown time.Duration
}

func (ContentCooldownRule) Name() domain.AdmissionReason { return domain.ReasonContentCooldownActive }

func (r ContentCooldownRule) Lookback() time.Duration { return r.Cooldown }

func (r ContentCooldownRule) Check(req Request, h History) (domain.AdmissionDecision, bool) {
	last, ok := h.last(func(ev domain.UsageEvent) bool { return ev.Content == req.Content })
	if ok && req.Now.Before(last.CreatedAt.Add(r.Cooldown)) {
		return reject(r.Name(), last.CreatedAt.Add(r.Cooldown))
	}
	return domain.AdmissionDecision{}, false
}

// DailyCapRule limits boosts across all content types in a trailing window.
type DailyCapRule struct {
	MaxBoosts int
	Window    time.Duration
}

func (DailyCapRule) Name() domain.AdmissionReason { return domain.ReasonDailyCapExceeded }

func (r DailyCapRule) Lookback() time.Duration { return r.Window }

func (r DailyCapRule) Check(req Request, h History) (domain.AdmissionDecision, bool) {
	counted := h.since(req.Now.Add(-r.Window), nil)
	if r.MaxBoosts > 0 && len(counted) >= r.MaxBoosts {
		return reject(r.Name(), capReset(counted, r.MaxBoosts, r.Window))
	}
	return domain.AdmissionDecision{}, false
}

func sameType(ct domain.ContentType) func(domain.UsageEvent) bool {
	return func(ev domain.UsageEvent) bool { return ev.Content.Type == ct }
}
