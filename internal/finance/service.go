package finance

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=finance
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	// ListTransactions may narrow by any part of the filter it can evaluate
	// cheaply. The service re-applies the full filter to whatever comes back.
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// BeginImport opens an import that excludes every other import until it
	// is committed or rolled back.
	BeginImport(ctx context.Context, from, to time.Time) (ImportTx, error)
}

type ImportTx interface {
	// FindDuplicates returns stored transactions sharing a DuplicateKey with
	// any of txs.
	FindDuplicates(ctx context.Context, txs []*Transaction) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Pie charts are laid out on a 200x200 view box.
const (
	pieCenter = 100
	pieRadius = 80
)

type Service struct {
	repo    Repository
	loc     *time.Location
	palette pipeline.Palette

	version    atomic.Uint64
	breakdowns *pipeline.Memo[*Breakdown]
	balances   *pipeline.Memo[*BalanceSheet]
	ledgers    *pipeline.Memo[*Ledger]
}

type Option func(*Service)

// WithLocation sets the practice time zone that transaction dates are anchored to.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithPalette(p pipeline.Palette) Option {
	return func(s *Service) { s.palette = p }
}

// WithMemo caches derived views. Entries are dropped on any mutation made
// through this service and expire after ttl otherwise.
func WithMemo(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size <= 0 {
			return
		}

		s.breakdowns = pipeline.NewMemo[*Breakdown](size, ttl)
		s.balances = pipeline.NewMemo[*BalanceSheet](size, ttl)
		s.ledgers = pipeline.NewMemo[*Ledger](size, ttl)
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		loc:     time.Local,
		palette: pipeline.DefaultPalette,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	Date           time.Time
	Description    string
	Person         string
	Category       string
	Amount         int64
	Direction      Direction
	Account        Account
	Status         Status
	RawDescription string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx := s.fromParams(params)
	if err := validate(tx); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.touch()

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	tx.Date = pipeline.DateIn(tx.Date, s.loc)
	tx.Category = normalizeCategory(tx.Category)

	if err := validate(tx); err != nil {
		return err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return err
	}

	s.touch()

	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.touch()

	return nil
}

// List returns the transactions matching filter, oldest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	txs = pipeline.Filter(txs, filter.Spec)
	txs = slices.DeleteFunc(txs, func(tx *Transaction) bool {
		return (filter.Account != "" && tx.Account != filter.Account) ||
			(filter.Status != "" && tx.Status != filter.Status)
	})

	sortByDate(txs)

	return txs, nil
}

type ImportResult struct {
	Imported []*Transaction
	Skipped  []CreateParams
}

// ImportBatch stores params in one batch, skipping entries that already exist
// with the same day, amount, direction and raw description.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	txs := make([]*Transaction, 0, len(params))

	for i, p := range params {
		tx := s.fromParams(p)
		if err := validate(tx); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txs = append(txs, tx)
	}

	from, to := dateRange(txs)

	itx, err := s.repo.BeginImport(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("beginning import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.FindDuplicates(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}

	seen := make(map[DuplicateKey]struct{}, len(existing))
	for _, tx := range existing {
		seen[tx.DuplicateKey()] = struct{}{}
	}

	result := &ImportResult{}

	var fresh []*Transaction

	for i, tx := range txs {
		if _, found := seen[tx.DuplicateKey()]; found {
			result.Skipped = append(result.Skipped, params[i])
			continue
		}

		fresh = append(fresh, tx)
	}

	if len(fresh) == 0 {
		return result, nil
	}

	if err := itx.CreateTransactions(ctx, fresh); err != nil {
		return nil, fmt.Errorf("creating transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}

	s.touch()

	result.Imported = fresh

	return result, nil
}

// Breakdown groups one direction's transactions by category.
type Breakdown struct {
	Direction Direction
	Total     int64
	Count     int
	Buckets   []pipeline.Bucket
	Slices    []pipeline.Slice
}

// Breakdown aggregates the income or expense side selected by filter.Type.
// Cancelled transactions never count.
func (s *Service) Breakdown(ctx context.Context, filter ListFilter) (*Breakdown, error) {
	dir := Direction(strings.ToLower(filter.Type))
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: direction must be income or expense", ErrInvalid)
	}

	filter.Type = string(dir)

	return s.breakdowns.Do(filter.key("breakdown", s.version.Load()), func() (*Breakdown, error) {
		txs, err := s.active(ctx, filter)
		if err != nil {
			return nil, err
		}

		buckets := pipeline.Aggregate(txs, s.palette)

		return &Breakdown{
			Direction: dir,
			Total:     pipeline.Total(txs),
			Count:     len(txs),
			Buckets:   buckets,
			Slices:    pipeline.Pie(buckets, pieCenter, pieCenter, pieRadius),
		}, nil
	})
}

type BalanceSheet struct {
	Income         int64
	Expense        int64
	Net            int64
	IncomeBuckets  []pipeline.Bucket
	IncomeSlices   []pipeline.Slice
	ExpenseBuckets []pipeline.Bucket
	ExpenseSlices  []pipeline.Slice
}

// BalanceSheet sets both sides of the period against each other. Any type in
// the filter is ignored.
func (s *Service) BalanceSheet(ctx context.Context, filter ListFilter) (*BalanceSheet, error) {
	filter.Type = ""

	return s.balances.Do(filter.key("balance", s.version.Load()), func() (*BalanceSheet, error) {
		txs, err := s.active(ctx, filter)
		if err != nil {
			return nil, err
		}

		var income, expense []*Transaction

		for _, tx := range txs {
			if tx.Direction == DirectionExpense {
				expense = append(expense, tx)
			} else {
				income = append(income, tx)
			}
		}

		sheet := &BalanceSheet{
			Income:         pipeline.Total(income),
			Expense:        pipeline.Total(expense),
			IncomeBuckets:  pipeline.Aggregate(income, s.palette),
			ExpenseBuckets: pipeline.Aggregate(expense, s.palette),
		}
		sheet.Net = sheet.Income - sheet.Expense
		sheet.IncomeSlices = pipeline.Pie(sheet.IncomeBuckets, pieCenter, pieCenter, pieRadius)
		sheet.ExpenseSlices = pipeline.Pie(sheet.ExpenseBuckets, pieCenter, pieCenter, pieRadius)

		return sheet, nil
	})
}

type LedgerEntry struct {
	*Transaction
	Balance int64
}

type Ledger struct {
	Account Account // empty for all accounts
	Opening int64
	In      int64
	Out     int64
	Closing int64
	Entries []LedgerEntry
}

// Ledger lists an account's movements with a running balance. The opening
// balance covers everything before the filter's start day regardless of the
// other criteria. An empty account combines cash and bank.
func (s *Service) Ledger(ctx context.Context, account Account, filter ListFilter) (*Ledger, error) {
	if account != "" && !account.Valid() {
		return nil, fmt.Errorf("%w: unknown account %q", ErrInvalid, account)
	}

	filter.Account = account

	return s.ledgers.Do(filter.key("ledger", s.version.Load()), func() (*Ledger, error) {
		txs, err := s.repo.ListTransactions(ctx, ListFilter{Account: account})
		if err != nil {
			return nil, fmt.Errorf("listing transactions: %w", err)
		}

		txs = slices.DeleteFunc(txs, func(tx *Transaction) bool {
			return tx.Status == StatusCancelled || (account != "" && tx.Account != account)
		})
		sortByDate(txs)

		ledger := &Ledger{Account: account}

		if filter.Dates != nil && filter.Dates.From != nil {
			start := pipeline.DayKey(*filter.Dates.From)
			cut := 0

			for cut < len(txs) && pipeline.DayKey(txs[cut].Date) < start {
				ledger.Opening += txs[cut].Signed()
				cut++
			}

			txs = txs[cut:]
		}

		balance := ledger.Opening

		for _, tx := range pipeline.Filter(txs, filter.Spec) {
			if filter.Status != "" && tx.Status != filter.Status {
				continue
			}

			balance += tx.Signed()

			if tx.Direction == DirectionExpense {
				ledger.Out += tx.Amount
			} else {
				ledger.In += tx.Amount
			}

			ledger.Entries = append(ledger.Entries, LedgerEntry{Transaction: tx, Balance: balance})
		}

		ledger.Closing = balance

		return ledger, nil
	})
}

// active lists the filtered, non-cancelled transactions.
func (s *Service) active(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(txs, func(tx *Transaction) bool {
		return tx.Status == StatusCancelled
	}), nil
}

func (s *Service) touch() {
	s.version.Add(1)
}

func (s *Service) fromParams(p CreateParams) *Transaction {
	return &Transaction{
		Date:           pipeline.DateIn(p.Date, s.loc),
		Description:    strings.TrimSpace(p.Description),
		Person:         strings.TrimSpace(p.Person),
		Category:       normalizeCategory(p.Category),
		Amount:         p.Amount,
		Direction:      p.Direction,
		Account:        p.Account,
		Status:         p.Status,
		RawDescription: p.RawDescription,
	}
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultCategory
	}

	return c
}

func validate(tx *Transaction) error {
	switch {
	case tx.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalid)
	case !tx.Direction.Valid():
		return fmt.Errorf("%w: unknown direction %q", ErrInvalid, tx.Direction)
	case !tx.Account.Valid():
		return fmt.Errorf("%w: unknown account %q", ErrInvalid, tx.Account)
	case !tx.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, tx.Status)
	case tx.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}

	return nil
}

// DuplicateKey identifies a statement line: two transactions with equal keys
// are the same bank movement.
type DuplicateKey struct {
	Day            int
	Amount         int64
	Direction      Direction
	RawDescription string
}

func (tx *Transaction) DuplicateKey() DuplicateKey {
	return DuplicateKey{
		Day:            pipeline.DayKey(tx.Date),
		Amount:         tx.Amount,
		Direction:      tx.Direction,
		RawDescription: tx.RawDescription,
	}
}

func dateRange(txs []*Transaction) (time.Time, time.Time) {
	minDate := txs[0].Date
	maxDate := txs[0].Date

	for _, tx := range txs[1:] {
		if tx.Date.Before(minDate) {
			minDate = tx.Date
		}

		if tx.Date.After(maxDate) {
			maxDate = tx.Date
		}
	}

	return minDate, maxDate
}

func sortByDate(txs []*Transaction) {
	slices.SortStableFunc(txs, func(a, b *Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
