package configs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"boost-engine/internal/core/domain"
	"boost-engine/internal/core/pricing"
)

// Pricing configures the tier table. Amounts are in cents.
type Pricing struct {
	MinBid int64 `env:"MIN_BID" envDefault:"100"`
	MaxBid int64 `env:"MAX_BID" envDefault:"1000000"`
	// MaxDuration caps hourly boosts.
	MaxDuration time.Duration `env:"MAX_DURATION" envDefault:"720h"`

	// Per content type ladders replacing the platform tiers, written as
	// name:minBid:multiplier pairs separated by commas.
	LiveTiers    string `env:"LIVE_TIERS"`
	PostTiers    string `env:"POST_TIERS"`
	ProfileTiers string `env:"PROFILE_TIERS"`
}

// Table builds the pricing table with the platform tiers and any per type
// overrides.
func (c Pricing) Table() (*pricing.Table, error) {
	table := pricing.NewTable(c.MinBid, pricing.DefaultTiers(), pricing.DefaultPromotionTiers()).WithMaxBid(c.MaxBid)
	overrides := []struct {
		ct  domain.ContentType
		raw string
	}{
		{domain.ContentTypeLiveStream, c.LiveTiers},
		{domain.ContentTypePost, c.PostTiers},
		{domain.ContentTypeProfile, c.ProfileTiers},
	}
	for _, o := range overrides {
		if strings.TrimSpace(o.raw) == "" {
			continue
		}
		tiers, err := parseTiers(o.raw)
		if err != nil {
			return nil, fmt.Errorf("%s tiers: %w", o.ct, err)
		}
		table = table.WithContentTiers(o.ct, tiers)
	}
	return table, nil
}

func parseTiers(raw string) ([]pricing.Tier, error) {
	var tiers []pricing.Tier
	for _, item := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("malformed tier %q, want name:minBid:multiplier", item)
		}
		minBid, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || minBid < 0 {
			return nil, fmt.Errorf("tier %q: bad min bid %q", parts[0], parts[1])
		}
		mult, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || mult < 1 {
			return nil, fmt.Errorf("tier %q: bad multiplier %q", parts[0], parts[2])
		}
		tiers = append(tiers, pricing.Tier{Name: parts[0], MinBid: minBid, Multiplier: mult})
	}
	return tiers, nil
}
