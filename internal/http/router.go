package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/praxis/internal/backend"
	"github.com/MrJamesThe3rd/praxis/internal/http/auth"
	"github.com/MrJamesThe3rd/praxis/internal/http/categorize"
	"github.com/MrJamesThe3rd/praxis/internal/http/finance"
	"github.com/MrJamesThe3rd/praxis/internal/http/importcsv"
	"github.com/MrJamesThe3rd/praxis/internal/http/report"
	"github.com/MrJamesThe3rd/praxis/internal/http/respond"
	"github.com/MrJamesThe3rd/praxis/internal/http/scheduling"
)

type Handlers struct {
	Finance    *finance.Handler
	Import     *importcsv.Handler
	Categories *categorize.Handler
	Reports    *report.Handler
	Scheduling *scheduling.Handler
}

// NewHandlers builds every v1 handler on top of svc.
func NewHandlers(svc *backend.Services, maxUploadBytes int64) Handlers {
	return Handlers{
		Finance:    finance.NewHandler(svc.Finance, svc.Location),
		Import:     importcsv.NewHandler(svc.Importer, maxUploadBytes),
		Categories: categorize.NewHandler(svc.Categories),
		Reports:    report.NewHandler(svc.Reports, svc.Location),
		Scheduling: scheduling.NewHandler(svc.Scheduling),
	}
}

type Options struct {
	CORSOrigins []string
	// Auth guards /api/v1 when set.
	Auth   *auth.Authenticator
	Health func(ctx context.Context) error
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Row-Count"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(r.Context()); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth.Middleware)
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Finance.Routes(r)
		})

		r.Route("/finance", h.Finance.SummaryRoutes)
		r.Route("/import", h.Import.Routes)

		r.Route("/categories/rules", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/reports", h.Reports.Routes)

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Scheduling.ClientRoutes(r)
		})

		r.Route("/psychologists", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Scheduling.PsychologistRoutes(r)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Scheduling.AppointmentRoutes(r)
		})

		h.Scheduling.DashboardRoutes(r)
	})

	return router
}
