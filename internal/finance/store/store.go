package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

type Store struct {
	db  *sql.DB
	loc *time.Location
}

// New returns a store reading DATE columns as calendar days in loc.
func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, date, description, person, category, amount, direction, account, status,
// raw_description, created_at, updated_at
func (s *Store) scanTransaction(sc scanner) (*finance.Transaction, error) {
	var tx finance.Transaction

	var direction, account string

	var status, rawDesc sql.NullString

	if err := sc.Scan(
		&tx.ID, &tx.Date, &tx.Description, &tx.Person, &tx.Category, &tx.Amount,
		&direction, &account, &status, &rawDesc,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Date = pipeline.DateIn(tx.Date, s.loc)
	tx.Direction = finance.Direction(direction)
	tx.Account = finance.Account(account)
	tx.Status = finance.Status(status.String)
	tx.RawDescription = rawDesc.String

	return &tx, nil
}

const selectTransactionColumns = `
	id, date, description, person, category, amount, direction, account, status,
	raw_description, created_at, updated_at
`

const insertTransaction = `
	INSERT INTO transactions (date, description, person, category, amount, direction, account, status, raw_description, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

// dateArg passes t's calendar day to a DATE column independent of its zone.
func dateArg(t time.Time) string {
	return t.Format(time.DateOnly)
}

func (s *Store) CreateTransaction(ctx context.Context, tx *finance.Transaction) error {
	err := s.db.QueryRowContext(ctx, insertTransaction,
		dateArg(tx.Date),
		tx.Description,
		tx.Person,
		tx.Category,
		tx.Amount,
		tx.Direction,
		tx.Account,
		tx.Status,
		tx.RawDescription,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*finance.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE id = $1 AND deleted_at IS NULL`

	tx, err := s.scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, finance.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// ListTransactions narrows by day range, direction, account and status in SQL.
// Text and category matching is left to the service.
func (s *Store) ListTransactions(ctx context.Context, filter finance.ListFilter) ([]*finance.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE deleted_at IS NULL`

	var args []any

	argIdx := 1

	add := func(cond string, arg any) {
		query += fmt.Sprintf(" AND "+cond, argIdx)

		args = append(args, arg)
		argIdx++
	}

	if filter.Dates != nil && filter.Dates.From != nil {
		add("date >= $%d", dateArg(*filter.Dates.From))
	}

	if filter.Dates != nil && filter.Dates.To != nil {
		add("date <= $%d", dateArg(*filter.Dates.To))
	}

	if dir := finance.Direction(filter.Type); dir.Valid() {
		add("direction = $%d", dir)
	}

	if filter.Account != "" {
		add("account = $%d", filter.Account)
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	query += " ORDER BY date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*finance.Transaction

	for rows.Next() {
		tx, err := s.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *finance.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $1, description = $2, person = $3, category = $4, amount = $5,
			direction = $6, account = $7, status = NULLIF($8, ''), updated_at = NOW()
		WHERE id = $9 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		dateArg(tx.Date),
		tx.Description,
		tx.Person,
		tx.Category,
		tx.Amount,
		tx.Direction,
		tx.Account,
		tx.Status,
		tx.ID,
	).Scan(&tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return finance.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n == 0 {
		return finance.ErrNotFound
	}

	return nil
}

// importLockKey guards every import with one advisory lock. Statements with
// overlapping but unequal date ranges must serialize too.
const importLockKey int64 = 0x70726178_696d7074

type importTx struct {
	store *Store
	tx    *sql.Tx
}

// BeginImport opens a transaction holding the import lock until it ends.
func (s *Store) BeginImport(ctx context.Context, _, _ time.Time) (finance.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{store: s, tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, txs []*finance.Transaction) ([]*finance.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	minDate, maxDate := txs[0].Date, txs[0].Date
	keys := make(map[finance.DuplicateKey]struct{}, len(txs))

	for _, tx := range txs {
		if tx.Date.Before(minDate) {
			minDate = tx.Date
		}

		if tx.Date.After(maxDate) {
			maxDate = tx.Date
		}

		keys[tx.DuplicateKey()] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE deleted_at IS NULL AND date >= $1 AND date <= $2
		ORDER BY date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, dateArg(minDate), dateArg(maxDate))
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*finance.Transaction

	for rows.Next() {
		tx, err := itx.store.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		if _, found := keys[tx.DuplicateKey()]; found {
			duplicates = append(duplicates, tx)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*finance.Transaction) error {
	stmt, err := itx.tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		err := stmt.QueryRowContext(ctx,
			dateArg(tx.Date),
			tx.Description,
			tx.Person,
			tx.Category,
			tx.Amount,
			tx.Direction,
			tx.Account,
			tx.Status,
			tx.RawDescription,
		).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}
