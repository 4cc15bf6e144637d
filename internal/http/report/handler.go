package report

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	financehttp "github.com/MrJamesThe3rd/praxis/internal/http/finance"
	"github.com/MrJamesThe3rd/praxis/internal/http/respond"
	"github.com/MrJamesThe3rd/praxis/internal/report"
)

type Handler struct {
	svc *report.Service
	loc *time.Location
}

func NewHandler(svc *report.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/csv", h.csv)
}

func (h *Handler) filter(r *http.Request) (finance.ListFilter, error) {
	return financehttp.ParseFilter(r, h.loc)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	text, err := h.svc.Summary(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	// Buffered so a failing listing can still answer with a JSON error.
	var buf bytes.Buffer

	n, err := h.svc.CSV(r.Context(), &buf, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename(filter)))
	w.Header().Set("X-Row-Count", strconv.Itoa(n))
	w.Write(buf.Bytes())
}

func filename(filter finance.ListFilter) string {
	name := "hareketler"

	if d := filter.Dates; d != nil {
		if d.From != nil {
			name += "_" + d.From.Format("20060102")
		}

		if d.To != nil {
			name += "_" + d.To.Format("20060102")
		}
	}

	return name + ".csv"
}
