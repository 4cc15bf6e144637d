// Package categorize suggests a category for a raw bank description from
// learned pattern rules.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("rule not found")
	ErrInvalid  = errors.New("invalid rule")
)

// Rule maps every description containing Pattern, ignoring case, to Category.
type Rule struct {
	ID        uuid.UUID
	Pattern   string
	Category  string
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=categorize
type Repository interface {
	// FindMatch returns the category of the longest pattern contained in
	// rawDescription, or "" when no rule applies.
	FindMatch(ctx context.Context, rawDescription string) (string, error)
	// SaveRule stores r, replacing the category of an existing rule with the
	// same pattern.
	SaveRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context) ([]*Rule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category for rawDescription, or "" if no rule matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (string, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, pattern, category string) (*Rule, error) {
	r := &Rule{
		Pattern:  strings.TrimSpace(pattern),
		Category: strings.TrimSpace(category),
	}

	if r.Pattern == "" || r.Category == "" {
		return nil, fmt.Errorf("%w: pattern and category are required", ErrInvalid)
	}

	if err := s.repo.SaveRule(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.ListRules(ctx)
}

func (s *Service) Forget(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, id)
}
