// Package memstore keeps category rules in process memory.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/categorize"
	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

type Store struct {
	mu    sync.RWMutex
	rules []categorize.Rule
	now   func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) FindMatch(_ context.Context, rawDescription string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw := pipeline.Fold(rawDescription)

	var best *categorize.Rule

	// Later rules win ties, matching the newest-first order of the SQL store.
	for i := range s.rules {
		r := &s.rules[i]
		if !strings.Contains(raw, pipeline.Fold(r.Pattern)) {
			continue
		}

		if best == nil || len(r.Pattern) >= len(best.Pattern) {
			best = r
		}
	}

	if best == nil {
		return "", nil
	}

	return best.Category, nil
}

func (s *Store) SaveRule(_ context.Context, r *categorize.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pipeline.Fold(r.Pattern)

	for i := range s.rules {
		if pipeline.Fold(s.rules[i].Pattern) == key {
			s.rules[i].Category = r.Category
			r.ID = s.rules[i].ID
			r.CreatedAt = s.rules[i].CreatedAt

			return nil
		}
	}

	r.ID = uuid.New()
	r.CreatedAt = s.now()
	s.rules = append(s.rules, *r)

	return nil
}

func (s *Store) ListRules(_ context.Context) ([]*categorize.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*categorize.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, &r)
	}

	slices.SortFunc(out, func(a, b *categorize.Rule) int {
		return strings.Compare(a.Pattern, b.Pattern)
	})

	return out, nil
}

func (s *Store) DeleteRule(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.rules, func(r categorize.Rule) bool { return r.ID == id })
	if i < 0 {
		return categorize.ErrNotFound
	}

	s.rules = slices.Delete(s.rules, i, i+1)

	return nil
}
