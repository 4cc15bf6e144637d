package finance

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

var (
	ErrNotFound = errors.New("transaction not found")
	ErrInvalid  = errors.New("invalid transaction")
)

// Direction tells whether money came in or went out.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// Account is the till a transaction moved through.
type Account string

const (
	AccountCash Account = "cash"
	AccountBank Account = "bank"
)

func (a Account) Valid() bool {
	return a == AccountCash || a == AccountBank
}

// Status is the optional settlement state of a transaction.
type Status string

const (
	StatusPaid      Status = "paid"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == "" || s == StatusPaid || s == StatusPending || s == StatusCancelled
}

// DefaultCategory is used when neither the user nor a rule supplied one.
const DefaultCategory = "Diğer"

// Transaction is a single income or expense entry.
type Transaction struct {
	ID             uuid.UUID
	Date           time.Time
	Description    string
	Person         string // Client or payee
	Category       string
	Amount         int64 // Amount in kuruş
	Direction      Direction
	Account        Account
	Status         Status
	RawDescription string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func (t *Transaction) RecordDate() time.Time  { return t.Date }
func (t *Transaction) RecordCategory() string { return t.Category }
func (t *Transaction) RecordType() string     { return string(t.Direction) }
func (t *Transaction) RecordAmount() int64    { return t.Amount }

func (t *Transaction) RecordText() []string {
	return []string{t.Description, t.Person, t.Category, t.RawDescription}
}

// Signed returns the amount as it moves the balance: positive for income.
func (t *Transaction) Signed() int64 {
	if t.Direction == DirectionExpense {
		return -t.Amount
	}

	return t.Amount
}

// ListFilter narrows a transaction listing. Spec.Type matches the direction.
type ListFilter struct {
	pipeline.Spec
	Account Account
	Status  Status
}

type listKey struct {
	View    string
	Spec    pipeline.SpecKey
	Account Account
	Status  Status
	Version uint64
}

func (f ListFilter) key(view string, version uint64) listKey {
	return listKey{
		View:    view,
		Spec:    f.Spec.Key(),
		Account: f.Account,
		Status:  f.Status,
		Version: version,
	}
}
