// Package memory implements the storage and locking ports in process. It
// backs single-instance deployments and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"boost-engine/internal/core/domain"
)

// Store implements port.Storage. Campaigns and usage events live behind one
// lock so CreateWithUsage is atomic.
type Store struct {
	mu        sync.RWMutex
	campaigns map[string]domain.Campaign
	live      map[domain.ContentRef]string
	usage     map[string][]domain.UsageEvent
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		campaigns: make(map[string]domain.Campaign),
		live:      make(map[domain.ContentRef]string),
		usage:     make(map[string][]domain.UsageEvent),
	}
}

func (s *Store) CreateWithUsage(ctx context.Context, c domain.Campaign, ev domain.UsageEvent, guard domain.UsageGuard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if guard.Enabled() {
		if err := guard.Check(s.since(ev.SellerID, guard.Since)); err != nil {
			return err
		}
	}
	if _, exists := s.campaigns[c.ID]; exists {
		return fmt.Errorf("campaign %s already exists", c.ID)
	}
	if id, taken := s.live[c.Content]; taken {
		return fmt.Errorf("%w: %s by campaign %s", domain.ErrContentAlreadyBoosted, c.Content, id)
	}
	s.campaigns[c.ID] = c.Clone()
	if c.Status.Live() {
		s.live[c.Content] = c.ID
	}

	events := append(s.usage[ev.SellerID], ev)
	// Events normally arrive in order; keep the slice sorted regardless.
	if n := len(events); n > 1 && events[n-1].CreatedAt.Before(events[n-2].CreatedAt) {
		sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	}
	s.usage[ev.SellerID] = events
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return domain.Campaign{}, fmt.Errorf("%w: %s", domain.ErrCampaignNotFound, id)
	}
	return c.Clone(), nil
}

func (s *Store) Update(ctx context.Context, id string, fn func(*domain.Campaign) error) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.campaigns[id]
	if !ok {
		return domain.Campaign{}, fmt.Errorf("%w: %s", domain.ErrCampaignNotFound, id)
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return cur.Clone(), err
	}
	next.ID, next.Content, next.SellerID = cur.ID, cur.Content, cur.SellerID
	s.campaigns[id] = next.Clone()
	if cur.Status.Live() && !next.Status.Live() && s.live[cur.Content] == id {
		delete(s.live, cur.Content)
	}
	return next, nil
}

func (s *Store) ListByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Campaign
	for _, c := range s.campaigns {
		if slices.Contains(statuses, c.Status) {
			out = append(out, c.Clone())
		}
	}
	slices.SortFunc(out, func(a, b domain.Campaign) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) FindLiveByContent(ctx context.Context, ref domain.ContentRef) (domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.live[ref]
	if !ok {
		return domain.Campaign{}, fmt.Errorf("%w: no live campaign for %s", domain.ErrCampaignNotFound, ref)
	}
	return s.campaigns[id].Clone(), nil
}

func (s *Store) ListSince(ctx context.Context, sellerID string, since time.Time) ([]domain.UsageEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.since(sellerID, since), nil
}

// since requires s.mu.
func (s *Store) since(sellerID string, t time.Time) []domain.UsageEvent {
	events := s.usage[sellerID]
	i := sort.Search(len(events), func(i int) bool { return events[i].CreatedAt.After(t) })
	return slices.Clone(events[i:])
}

func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for seller, events := range s.usage {
		i := sort.Search(len(events), func(i int) bool { return !events[i].CreatedAt.Before(cutoff) })
		if i == 0 {
			continue
		}
		removed += int64(i)
		if i == len(events) {
			delete(s.usage, seller)
			continue
		}
		s.usage[seller] = slices.Clone(events[i:])
	}
	return removed, nil
}
