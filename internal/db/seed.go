package db

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts a few demo sellers with running boosts, each with its usage
// event. Content already held by a live campaign is skipped, so seeding
// twice is harmless.
func Seed(ctx context.Context, db *pgxpool.Pool, now time.Time) (int, error) {
	r := rand.New(rand.NewSource(now.UnixNano()))
	tiers := []struct {
		name       string
		bid        int64
		multiplier float64
	}{
		{"boost", 999, 2},
		{"premium", 1499, 5},
		{"spotlight", 1999, 10},
	}
	kinds := []string{"live_stream", "post", "profile"}

	var created int
	for i := 1; i <= 3; i++ {
		seller := fmt.Sprintf("seller-%d", i)
		for j, kind := range kinds {
			tier := tiers[r.Intn(len(tiers))]
			hours := int64(1 + r.Intn(12))
			start := now.Add(-time.Duration(j+1) * 10 * time.Minute)
			contentID := fmt.Sprintf("%s-%s-%d", seller, kind, j+1)

			tx, err := db.Begin(ctx)
			if err != nil {
				return created, err
			}
			var id string
			err = tx.QueryRow(ctx, `INSERT INTO campaigns
    (id, seller_id, content_type, content_id, tier, multiplier, pricing_kind, bid_per_hour, daily_budget,
     total_budget, start_at, end_at, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,'hourly',$7,$8,$9,$10,$11,'active',$10,$10) ON CONFLICT DO NOTHING RETURNING id`,
				uuid.NewString(), seller, kind, contentID, tier.name, tier.multiplier, tier.bid, tier.bid*24,
				tier.bid*hours, start, start.Add(time.Duration(hours)*time.Hour)).Scan(&id)
			if errors.Is(err, pgx.ErrNoRows) {
				_ = tx.Rollback(ctx)
				continue
			}
			if err == nil {
				_, err = tx.Exec(ctx, `INSERT INTO usage_events
    (id, seller_id, content_type, content_id, campaign_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`, uuid.NewString(), seller, kind, contentID, id, start)
			}
			if err != nil {
				_ = tx.Rollback(ctx)
				return created, err
			}
			if err = tx.Commit(ctx); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
