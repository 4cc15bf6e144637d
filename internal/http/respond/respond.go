// Package respond holds the request parsing and JSON response helpers shared
// by the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/categorize"
	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/importer"
	"github.com/MrJamesThe3rd/praxis/internal/importer/statement"
	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

// ErrBadRequest marks malformed input caught before it reaches a service.
var ErrBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as {"error": msg} with the status its kind maps to.
// Unexpected errors are logged and hidden behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("failed to handle request", "error", err, "method", r.Method, "path", r.URL.Path)
		JSON(w, status, errorResponse{Error: "internal error"})

		return
	}

	JSON(w, status, errorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, finance.ErrNotFound),
		errors.Is(err, scheduling.ErrNotFound),
		errors.Is(err, categorize.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduling.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, finance.ErrInvalid),
		errors.Is(err, scheduling.ErrInvalid),
		errors.Is(err, categorize.ErrInvalid),
		errors.Is(err, statement.ErrUnknownFormat),
		errors.Is(err, importer.ErrEmpty):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// BadRequest builds an ErrBadRequest with a message.
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// Decode reads a JSON body into dst.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return BadRequest("invalid json: %v", err)
	}

	return nil
}

// ID parses the named URL parameter as a UUID.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, BadRequest("invalid %s", name)
	}

	return id, nil
}

// Date parses a YYYY-MM-DD value as a calendar day in loc.
func Date(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, BadRequest("invalid date %q: want YYYY-MM-DD", s)
	}

	return t, nil
}

// Spec reads the shared search parameters q, category, type and from/to.
// typeParam names the query key carrying the type criterion.
func Spec(r *http.Request, typeParam string, loc *time.Location) (pipeline.Spec, error) {
	q := r.URL.Query()

	spec := pipeline.Spec{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Type:     q.Get(typeParam),
	}

	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return spec, nil
	}

	spec.Dates = &pipeline.DateRange{}

	if from != "" {
		t, err := Date(from, loc)
		if err != nil {
			return spec, err
		}

		spec.Dates.From = &t
	}

	if to != "" {
		t, err := Date(to, loc)
		if err != nil {
			return spec, err
		}

		spec.Dates.To = &t
	}

	return spec, nil
}
