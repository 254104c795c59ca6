package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"boost-engine/internal/core/domain"
)

const (
	uniqueViolation    = "23505"
	liveContentIndex   = "campaigns_live_content_idx"
	campaignColumns    = `id, seller_id, content_type, content_id, tier, multiplier, pricing_kind, bid_per_hour, daily_budget, flat_fee, total_budget, spent_amount, start_at, end_at, status, pauses, ended_at, created_at, updated_at`
	usageEventsColumns = `id, seller_id, content_type, content_id, campaign_id, created_at`
)

// Store implements port.Storage on PostgreSQL using pgxpool. Campaign
// creation takes a transaction scoped advisory lock per seller, and a
// partial unique index keeps live campaigns exclusive per content item.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// pauseRow is the JSONB encoding of a pause interval.
type pauseRow struct {
	From time.Time  `json:"from"`
	To   *time.Time `json:"to,omitempty"`
}

func encodePauses(pauses []domain.PauseInterval) ([]byte, error) {
	rows := make([]pauseRow, 0, len(pauses))
	for _, p := range pauses {
		r := pauseRow{From: p.From.UTC()}
		if !p.To.IsZero() {
			to := p.To.UTC()
			r.To = &to
		}
		rows = append(rows, r)
	}
	return json.Marshal(rows)
}

func decodePauses(raw []byte) ([]domain.PauseInterval, error) {
	var rows []pauseRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]domain.PauseInterval, 0, len(rows))
	for _, r := range rows {
		p := domain.PauseInterval{From: r.From.UTC()}
		if r.To != nil {
			p.To = r.To.UTC()
		}
		out = append(out, p)
	}
	return out, nil
}

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		c                 domain.Campaign
		contentType, kind string
		bid, daily, fee   int64
		status            string
		pauses            []byte
		endedAt           *time.Time
	)
	err := row.Scan(&c.ID, &c.SellerID, &contentType, &c.Content.ID, &c.Tier, &c.Multiplier, &kind,
		&bid, &daily, &fee, &c.TotalBudget, &c.SpentAmount, &c.StartAt, &c.EndAt, &status, &pauses,
		&endedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Campaign{}, err
	}
	if c.Content.Type, err = domain.ParseContentType(contentType); err != nil {
		return domain.Campaign{}, err
	}
	switch domain.PricingKind(kind) {
	case domain.PricingHourly:
		c.Pricing = domain.HourlyPricing{BidPerHour: bid, DailyBudget: daily}
	case domain.PricingFlatFee:
		c.Pricing = domain.FlatFeePricing{Fee: fee}
	default:
		return domain.Campaign{}, fmt.Errorf("%w: campaign %s has pricing kind %q", domain.ErrInvariantViolation, c.ID, kind)
	}
	if c.Pauses, err = decodePauses(pauses); err != nil {
		return domain.Campaign{}, fmt.Errorf("decode pauses of campaign %s: %w", c.ID, err)
	}
	c.Status = domain.Status(status)
	if endedAt != nil {
		c.EndedAt = endedAt.UTC()
	}
	c.StartAt, c.EndAt = c.StartAt.UTC(), c.EndAt.UTC()
	c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
	return c, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// CreateWithUsage inserts the campaign and its usage event in one
// transaction. The seller's advisory lock is held from the guard read until
// commit, so concurrent creates of one seller see each other's events.
func (s *Store) CreateWithUsage(ctx context.Context, c domain.Campaign, ev domain.UsageEvent, guard domain.UsageGuard) (err error) {
	pauses, err := encodePauses(c.Pauses)
	if err != nil {
		return err
	}
	var fee int64
	if p, ok := c.Pricing.(domain.FlatFeePricing); ok {
		fee = p.Fee
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// serialize admissions of one seller across instances
	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, c.SellerID); err != nil {
		return err
	}
	if guard.Enabled() {
		var events []domain.UsageEvent
		// read committed: each statement sees commits made before the lock was granted
		if events, err = listSince(ctx, tx, ev.SellerID, guard.Since); err != nil {
			return err
		}
		if err = guard.Check(events); err != nil {
			return err
		}
	}
	_, err = tx.Exec(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		c.ID, c.SellerID, c.Content.Type.String(), c.Content.ID, c.Tier, c.Multiplier, string(c.Pricing.Kind()),
		c.BidPerHour(), c.DailyBudget(), fee, c.TotalBudget, c.SpentAmount, c.StartAt, c.EndAt, string(c.Status),
		pauses, nullTime(c.EndedAt), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == liveContentIndex {
			err = fmt.Errorf("%w: %s", domain.ErrContentAlreadyBoosted, c.Content)
		}
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO usage_events (`+usageEventsColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		ev.ID, ev.SellerID, ev.Content.Type.String(), ev.Content.ID, ev.CampaignID, ev.CreatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (domain.Campaign, error) {
	c, err := scanCampaign(s.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, fmt.Errorf("%w: %s", domain.ErrCampaignNotFound, id)
	}
	return c, err
}

// Update locks the campaign row for the duration of fn.
func (s *Store) Update(ctx context.Context, id string, fn func(*domain.Campaign) error) (updated domain.Campaign, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.Campaign{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	cur, err := scanCampaign(tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, fmt.Errorf("%w: %s", domain.ErrCampaignNotFound, id)
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	next := cur.Clone()
	if err = fn(&next); err != nil {
		return cur, err
	}
	pauses, err := encodePauses(next.Pauses)
	if err != nil {
		return cur, err
	}
	_, err = tx.Exec(ctx, `UPDATE campaigns
SET spent_amount = $2, status = $3, pauses = $4, ended_at = $5, updated_at = $6
WHERE id = $1`,
		id, next.SpentAmount, string(next.Status), pauses, nullTime(next.EndedAt), next.UpdatedAt)
	if err != nil {
		return cur, err
	}
	return next, nil
}

func (s *Store) ListByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.Campaign, error) {
	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, string(st))
	}
	rows, err := s.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE status = ANY($1) ORDER BY id`, names)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
}

func (s *Store) FindLiveByContent(ctx context.Context, ref domain.ContentRef) (domain.Campaign, error) {
	c, err := scanCampaign(s.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns
WHERE content_type = $1 AND content_id = $2 AND status IN ('active', 'paused')`, ref.Type.String(), ref.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, fmt.Errorf("%w: no live campaign for %s", domain.ErrCampaignNotFound, ref)
	}
	return c, err
}

func (s *Store) ListSince(ctx context.Context, sellerID string, since time.Time) ([]domain.UsageEvent, error) {
	return listSince(ctx, s.pool, sellerID, since)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listSince(ctx context.Context, q querier, sellerID string, since time.Time) ([]domain.UsageEvent, error) {
	rows, err := q.Query(ctx, `SELECT `+usageEventsColumns+` FROM usage_events
WHERE seller_id = $1 AND created_at > $2 ORDER BY created_at, id`, sellerID, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UsageEvent, error) {
		var (
			ev          domain.UsageEvent
			contentType string
		)
		if err := row.Scan(&ev.ID, &ev.SellerID, &contentType, &ev.Content.ID, &ev.CampaignID, &ev.CreatedAt); err != nil {
			return ev, err
		}
		ev.CreatedAt = ev.CreatedAt.UTC()
		var err error
		ev.Content.Type, err = domain.ParseContentType(contentType)
		return ev, err
	})
}

func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM usage_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
