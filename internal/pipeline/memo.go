package pipeline

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mitchellh/hashstructure/v2"
)

// SpecKey is the hashable form of a Spec. Dates are reduced to their day keys
// so two specs naming the same days share a cache entry.
type SpecKey struct {
	Query    string
	Category string
	Type     string
	From     int
	To       int
}

// Key returns the hashable form of s.
func (s Spec) Key() SpecKey {
	k := SpecKey{
		Query:    s.Query,
		Category: s.Category,
		Type:     s.Type,
		From:     minDayKey,
		To:       maxDayKey,
	}

	if s.Dates != nil {
		if s.Dates.From != nil {
			k.From = DayKey(*s.Dates.From)
		}

		if s.Dates.To != nil {
			k.To = DayKey(*s.Dates.To)
		}
	}

	return k
}

// Memo caches derived views keyed by the hash of a caller-built key. Callers
// fold a source version into the key so any mutation of the source misses.
type Memo[T any] struct {
	views *expirable.LRU[uint64, T]
}

// NewMemo returns a memo holding up to size views for ttl each. Least recently
// used views are evicted first.
func NewMemo[T any](size int, ttl time.Duration) *Memo[T] {
	if size < 1 {
		size = 1
	}

	return &Memo[T]{views: expirable.NewLRU[uint64, T](size, nil, ttl)}
}

// Do returns the cached view for key or computes and stores it. Errors are
// never cached. A key that cannot be hashed bypasses the cache.
func (m *Memo[T]) Do(key any, compute func() (T, error)) (T, error) {
	if m == nil {
		return compute()
	}

	h, err := hashstructure.Hash(key, hashstructure.FormatV2, nil)
	if err != nil {
		return compute()
	}

	if v, ok := m.views.Get(h); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}

	m.views.Add(h, v)

	return v, nil
}

// Reset drops every cached view.
func (m *Memo[T]) Reset() {
	if m == nil {
		return
	}

	m.views.Purge()
}
