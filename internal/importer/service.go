// Package importer turns bank statement uploads into ledger entries.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
)

// ErrEmpty is returned when a statement holds no transactions.
var ErrEmpty = errors.New("statement has no transactions")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer

// Parser reads one statement export.
type Parser interface {
	Parse(r io.Reader) ([]finance.CreateParams, error)
}

// Categorizer suggests a category for a raw bank description.
type Categorizer interface {
	Suggest(ctx context.Context, rawDescription string) (string, error)
}

// Ledger stores a parsed batch, skipping rows it already holds.
type Ledger interface {
	ImportBatch(ctx context.Context, params []finance.CreateParams) (*finance.ImportResult, error)
}

type Service struct {
	parser     Parser
	categories Categorizer
	ledger     Ledger
}

// NewService wires a statement parser to the ledger. categories may be nil, in
// which case every row lands in finance.DefaultCategory.
func NewService(parser Parser, categories Categorizer, ledger Ledger) *Service {
	return &Service{parser: parser, categories: categories, ledger: ledger}
}

// Preview parses the statement and fills in suggested categories without
// storing anything.
func (s *Service) Preview(ctx context.Context, r io.Reader) ([]finance.CreateParams, error) {
	params, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}

	if len(params) == 0 {
		return nil, ErrEmpty
	}

	for i := range params {
		params[i].Category = s.suggest(ctx, params[i].RawDescription)
	}

	return params, nil
}

// Import parses, categorizes and stores the statement.
func (s *Service) Import(ctx context.Context, r io.Reader) (*finance.ImportResult, error) {
	params, err := s.Preview(ctx, r)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.ImportBatch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("importing statement: %w", err)
	}

	slog.InfoContext(ctx, "statement imported", "imported", len(res.Imported), "skipped", len(res.Skipped))

	return res, nil
}

// suggest never fails the import: a broken rule lookup only costs the category.
func (s *Service) suggest(ctx context.Context, raw string) string {
	if s.categories == nil {
		return finance.DefaultCategory
	}

	category, err := s.categories.Suggest(ctx, raw)
	if err != nil {
		slog.Error("failed to suggest category", "error", err, "description", raw)
		return finance.DefaultCategory
	}

	if category == "" {
		return finance.DefaultCategory
	}

	return category
}
