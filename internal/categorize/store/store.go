package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/categorize"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMatch returns the category of the longest pattern contained in
// rawDescription. Patterns match literally, % and _ included, and the Turkish
// i letters compare equal as in pipeline.Fold.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (string, error) {
	query := `
		SELECT category
		FROM category_rules
		WHERE translate($1, 'İIı', 'iii')
			ILIKE '%' || replace(replace(replace(translate(pattern, 'İIı', 'iii'), '\', '\\'), '%', '\%'), '_', '\_') || '%' ESCAPE '\'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return category, nil
}

func (s *Store) SaveRule(ctx context.Context, r *categorize.Rule) error {
	query := `
		INSERT INTO category_rules (pattern, category, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (LOWER(translate(pattern, 'İIı', 'iii'))) DO UPDATE SET category = EXCLUDED.category
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, r.Pattern, r.Category).Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("saving rule: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context) ([]*categorize.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, pattern, category, created_at FROM category_rules ORDER BY pattern ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*categorize.Rule

	for rows.Next() {
		var r categorize.Rule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Category, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rule rows: %w", err)
	}

	return rules, nil
}

func (s *Store) DeleteRule(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM category_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	if n == 0 {
		return categorize.ErrNotFound
	}

	return nil
}
