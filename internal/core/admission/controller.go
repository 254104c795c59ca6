// Package admission decides whether a seller may buy a new boost.
package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/port"
)

// Limit is the per content type configuration.
type Limit struct {
	MaxBoosts int
	Window    time.Duration
	Cooldown  time.Duration
}

// Config holds every admission limit.
type Config struct {
	Limits              map[domain.ContentType]Limit
	SameContentCooldown time.Duration
	MaxDailyBoosts      int
	DailyWindow         time.Duration
}

// DefaultConfig returns the platform limits.
func DefaultConfig() Config {
	return Config{
		Limits: map[domain.ContentType]Limit{
			domain.ContentTypeLiveStream: {MaxBoosts: 3, Window: 30 * time.Minute, Cooldown: 2 * time.Minute},
			domain.ContentTypePost:       {MaxBoosts: 5, Window: 2 * time.Hour, Cooldown: 3 * time.Minute},
			domain.ContentTypeProfile:    {MaxBoosts: 1, Window: 24 * time.Hour, Cooldown: time.Hour},
		},
		SameContentCooldown: time.Hour,
		MaxDailyBoosts:      10,
		DailyWindow:         24 * time.Hour,
	}
}

// Rules returns the checks in evaluation order. The first failing rule
// determines the reason the caller sees.
func (c Config) Rules() []Rule {
	return []Rule{
		WindowCapRule{Limits: c.Limits},
		CooldownRule{Limits: c.Limits},
		ContentCooldownRule{Cooldown: c.SameContentCooldown},
		DailyCapRule{MaxBoosts: c.MaxDailyBoosts, Window: c.DailyWindow},
	}
}

// Controller evaluates boost requests against the usage ledger. It never
// writes; recording happens when the campaign is created.
type Controller struct {
	ledger   port.UsageLedger
	cfg      Config
	rules    []Rule
	lookback time.Duration
	timeout  time.Duration
}

// NewController builds a controller. A zero timeout leaves storage calls
// bounded only by the caller's context.
func NewController(ledger port.UsageLedger, cfg Config, timeout time.Duration) *Controller {
	rules := cfg.Rules()
	var lookback time.Duration
	for _, r := range rules {
		lookback = max(lookback, r.Lookback())
	}
	return &Controller{ledger: ledger, cfg: cfg, rules: rules, lookback: lookback, timeout: timeout}
}

// Lookback is the longest window any rule reads. Ledger pruning must keep
// at least this much history.
func (c *Controller) Lookback() time.Duration { return c.lookback }

// Evaluate checks whether sellerID may boost contentID of type ct at now.
// Unknown types fail with domain.ErrInvalidContentType. Storage failures
// fail closed with domain.ErrStorageUnavailable and a refusing decision.
func (c *Controller) Evaluate(ctx context.Context, sellerID string, ct domain.ContentType, contentID string, now time.Time) (domain.AdmissionDecision, error) {
	ref := domain.ContentRef{Type: ct, ID: contentID}
	if err := ref.Validate(); err != nil {
		return domain.AdmissionDecision{Reason: domain.ReasonInvalidContentType}, err
	}
	if strings.TrimSpace(sellerID) == "" {
		return domain.AdmissionDecision{Reason: domain.ReasonInvalidSeller}, domain.ErrInvalidSeller
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	events, err := c.ledger.ListSince(ctx, sellerID, now.Add(-c.lookback))
	if err != nil {
		return domain.AdmissionDecision{Reason: domain.ReasonStorageUnavailable},
			fmt.Errorf("%w: list usage: %v", domain.ErrStorageUnavailable, err)
	}

	return c.decide(Request{SellerID: sellerID, Content: ref, Now: now}, events), nil
}

// Guard returns a check that repeats the rules for the request against a
// snapshot the store reads inside its per-seller critical section. This
// closes the gap between Evaluate and the write when the caller's own lock
// is lost or spans several processes. A rejection is a *domain.AdmissionError.
func (c *Controller) Guard(sellerID string, ref domain.ContentRef, now time.Time) domain.UsageGuard {
	req := Request{SellerID: sellerID, Content: ref, Now: now}
	return domain.UsageGuard{
		Since: now.Add(-c.lookback),
		Check: func(events []domain.UsageEvent) error {
			if decision := c.decide(req, events); !decision.Allowed {
				return &domain.AdmissionError{Decision: decision}
			}
			return nil
		},
	}
}

func (c *Controller) decide(req Request, h History) domain.AdmissionDecision {
	remaining := c.remaining(req, h)
	for _, rule := range c.rules {
		if decision, rejected := rule.Check(req, h); rejected {
			decision.Remaining = remaining
			return decision
		}
	}
	return domain.AdmissionDecision{Allowed: true, Reason: domain.ReasonAllowed, Remaining: remaining}
}

func (c *Controller) remaining(req Request, h History) int {
	limit := c.cfg.Limits[req.Content.Type]
	used := len(h.since(req.Now.Add(-limit.Window), sameType(req.Content.Type)))
	return max(limit.MaxBoosts-used, 0)
}
