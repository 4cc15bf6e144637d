// Package memstore keeps transactions in process memory. Contents are lost on
// restart; it backs the demo mode and handler tests.
package memstore

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
)

var errTxDone = errors.New("import already committed or rolled back")

type Store struct {
	mu    sync.RWMutex
	txs   map[uuid.UUID]finance.Transaction
	order map[uuid.UUID]int // insertion sequence, breaks same-day ties
	seq   int
	now   func() time.Time
}

func New() *Store {
	return &Store{
		txs:   make(map[uuid.UUID]finance.Transaction),
		order: make(map[uuid.UUID]int),
		now:   time.Now,
	}
}

func (s *Store) CreateTransaction(_ context.Context, tx *finance.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insert(tx)

	return nil
}

// BeginImport holds the write lock until the import is committed or rolled
// back. Rows created through it become visible on Commit.
func (s *Store) BeginImport(_ context.Context, _, _ time.Time) (finance.ImportTx, error) {
	s.mu.Lock()

	return &importTx{store: s}, nil
}

type importTx struct {
	store   *Store
	pending []*finance.Transaction
	done    bool
}

func (itx *importTx) FindDuplicates(_ context.Context, txs []*finance.Transaction) ([]*finance.Transaction, error) {
	keys := make(map[finance.DuplicateKey]struct{}, len(txs))
	for _, tx := range txs {
		keys[tx.DuplicateKey()] = struct{}{}
	}

	var duplicates []*finance.Transaction

	for _, tx := range itx.store.txs {
		if _, found := keys[tx.DuplicateKey()]; found {
			duplicates = append(duplicates, &tx)
		}
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(_ context.Context, txs []*finance.Transaction) error {
	itx.pending = append(itx.pending, txs...)
	return nil
}

func (itx *importTx) Commit() error {
	if itx.done {
		return errTxDone
	}

	for _, tx := range itx.pending {
		itx.store.insert(tx)
	}

	itx.end()

	return nil
}

func (itx *importTx) Rollback() error {
	if itx.done {
		return errTxDone
	}

	itx.end()

	return nil
}

func (itx *importTx) end() {
	itx.done = true
	itx.pending = nil
	itx.store.mu.Unlock()
}

func (s *Store) insert(tx *finance.Transaction) {
	tx.ID = uuid.New()
	tx.CreatedAt = s.now()
	tx.UpdatedAt = new(tx.CreatedAt)

	s.txs[tx.ID] = *tx
	s.seq++
	s.order[tx.ID] = s.seq
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[id]
	if !ok {
		return nil, finance.ErrNotFound
	}

	return &tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx *finance.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.txs[tx.ID]
	if !ok {
		return finance.ErrNotFound
	}

	tx.CreatedAt = old.CreatedAt
	tx.RawDescription = old.RawDescription
	tx.UpdatedAt = new(s.now())

	s.txs[tx.ID] = *tx

	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[id]; !ok {
		return finance.ErrNotFound
	}

	delete(s.txs, id)
	delete(s.order, id)

	return nil
}

// ListTransactions returns copies of every stored transaction in the filter's
// account, oldest first. The service applies the remaining criteria.
func (s *Store) ListTransactions(_ context.Context, filter finance.ListFilter) ([]*finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]*finance.Transaction, 0, len(s.txs))

	for _, tx := range s.txs {
		if filter.Account != "" && tx.Account != filter.Account {
			continue
		}

		txs = append(txs, &tx)
	}

	slices.SortFunc(txs, func(a, b *finance.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		return s.order[a.ID] - s.order[b.ID]
	})

	return txs, nil
}
