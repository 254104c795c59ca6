// Package ranking blends organic and sponsored content into one feed.
package ranking

import (
	"cmp"
	"slices"
	"time"

	"boost-engine/internal/core/domain"
)

// Engine is stateless and safe for concurrent use. It never mutates the
// campaigns it is given.
type Engine struct{}

// NewEngine returns a ranking engine.
func NewEngine() *Engine { return &Engine{} }

// Rank scores every organic candidate, applying the multiplier of the
// campaign boosting its content at now, and returns the candidates ordered
// by effective score with 1-based positions. Campaigns that have expired by
// now are ignored even if their stored status is still active. Duplicate
// candidates keep their highest organic score.
func (e *Engine) Rank(organic []domain.OrganicCandidate, campaigns []domain.Campaign, now time.Time) []domain.FeedCandidate {
	boosts := activeBoosts(campaigns, now)

	best := make(map[domain.ContentRef]int, len(organic))
	feed := make([]domain.FeedCandidate, 0, len(organic))
	for _, oc := range organic {
		if i, dup := best[oc.Content]; dup {
			if oc.OrganicScore > feed[i].OrganicScore {
				feed[i] = score(oc, boosts)
			}
			continue
		}
		best[oc.Content] = len(feed)
		feed = append(feed, score(oc, boosts))
	}

	slices.SortFunc(feed, func(a, b domain.FeedCandidate) int {
		if c := cmp.Compare(b.EffectiveScore, a.EffectiveScore); c != 0 {
			return c
		}
		return a.Content.Compare(b.Content)
	})
	for i := range feed {
		feed[i].Position = i + 1
	}
	return feed
}

func score(oc domain.OrganicCandidate, boosts map[domain.ContentRef]domain.Campaign) domain.FeedCandidate {
	fc := domain.FeedCandidate{
		Content:        oc.Content,
		OrganicScore:   oc.OrganicScore,
		Multiplier:     1,
		EffectiveScore: oc.OrganicScore,
	}
	if c, ok := boosts[oc.Content]; ok {
		fc.IsSponsored = true
		fc.CampaignID = c.ID
		fc.Multiplier = c.Multiplier
		fc.EffectiveScore = oc.OrganicScore * c.Multiplier
	}
	return fc
}

// activeBoosts indexes campaigns boosting at now by content. Should two
// campaigns claim the same content, the higher multiplier wins, then the
// lower id.
func activeBoosts(campaigns []domain.Campaign, now time.Time) map[domain.ContentRef]domain.Campaign {
	out := make(map[domain.ContentRef]domain.Campaign, len(campaigns))
	for _, c := range campaigns {
		advanced, _ := c.Advance(now)
		if !advanced.BoostingAt(now) {
			continue
		}
		if cur, ok := out[c.Content]; ok {
			if cur.Multiplier > c.Multiplier || (cur.Multiplier == c.Multiplier && cur.ID < c.ID) {
				continue
			}
		}
		out[c.Content] = advanced
	}
	return out
}
