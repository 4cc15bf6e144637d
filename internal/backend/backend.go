// Package backend assembles the practice services for the configured store.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/praxis/internal/categorize"
	catmem "github.com/MrJamesThe3rd/praxis/internal/categorize/memstore"
	catstore "github.com/MrJamesThe3rd/praxis/internal/categorize/store"
	"github.com/MrJamesThe3rd/praxis/internal/config"
	"github.com/MrJamesThe3rd/praxis/internal/database"
	"github.com/MrJamesThe3rd/praxis/internal/finance"
	finmem "github.com/MrJamesThe3rd/praxis/internal/finance/memstore"
	finstore "github.com/MrJamesThe3rd/praxis/internal/finance/store"
	"github.com/MrJamesThe3rd/praxis/internal/importer"
	"github.com/MrJamesThe3rd/praxis/internal/importer/statement"
	"github.com/MrJamesThe3rd/praxis/internal/report"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
	schedmem "github.com/MrJamesThe3rd/praxis/internal/scheduling/memstore"
	schedstore "github.com/MrJamesThe3rd/praxis/internal/scheduling/store"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling/supabase"
)

// Services is everything the API and the TUI need.
type Services struct {
	Finance    *finance.Service
	Categories *categorize.Service
	Scheduling *scheduling.Service
	Importer   *importer.Service
	Reports    *report.Service
	Location   *time.Location

	db *sql.DB
}

type repositories struct {
	finance    finance.Repository
	categories categorize.Repository
	scheduling scheduling.Repository
}

// New opens the configured store, migrating it first when asked, and wires the
// services on top of it.
func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var (
		repos repositories
		db    *sql.DB
	)

	switch cfg.App.Store {
	case config.StoreMemory:
		repos = repositories{
			finance:    finmem.New(),
			categories: catmem.New(),
			scheduling: schedmem.New(),
		}

		slog.Info("initialized memory store")
	case config.StorePostgres:
		if cfg.DB.Migrate {
			if err := database.Migrate(cfg.ConnectionString()); err != nil {
				return nil, fmt.Errorf("migrating database: %w", err)
			}
		}

		db, err = database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		repos = repositories{
			finance:    finstore.New(db, loc),
			categories: catstore.New(db),
			scheduling: schedstore.New(db, loc),
		}

		slog.Info("initialized postgres store", "host", cfg.DB.Host, "database", cfg.DB.Name)
	default:
		return nil, fmt.Errorf("unsupported store: %s", cfg.App.Store)
	}

	return assemble(cfg, loc, repos, db), nil
}

func assemble(cfg *config.Config, loc *time.Location, repos repositories, db *sql.DB) *Services {
	finOpts := []finance.Option{finance.WithLocation(loc)}
	if cfg.Cache.Size > 0 {
		finOpts = append(finOpts, finance.WithMemo(cfg.Cache.Size, cfg.Cache.TTL))
	}

	schedOpts := []scheduling.Option{scheduling.WithLocation(loc)}
	if cfg.Supabase.URL != "" {
		schedOpts = append(schedOpts, scheduling.WithReader(
			supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key, loc, cfg.Supabase.Timeout),
		))

		slog.Info("dashboard reads from supabase", "url", cfg.Supabase.URL)
	}

	fin := finance.NewService(repos.finance, finOpts...)
	categories := categorize.NewService(repos.categories)

	return &Services{
		Finance:    fin,
		Categories: categories,
		Scheduling: scheduling.NewService(repos.scheduling, schedOpts...),
		Importer:   importer.NewService(statement.NewParser(loc), categories, fin),
		Reports:    report.NewService(fin),
		Location:   loc,
		db:         db,
	}
}

// Health pings the database. The memory store is always healthy.
func (s *Services) Health(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	return database.Health(ctx, s.db)
}

func (s *Services) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}
