package finance

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/http/respond"
)

type Handler struct {
	svc *finance.Service
	loc *time.Location
}

func NewHandler(svc *finance.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

// Routes mounts the transaction CRUD endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// SummaryRoutes mounts the derived views of the ledger.
func (h *Handler) SummaryRoutes(r chi.Router) {
	r.Get("/breakdown", h.breakdown)
	r.Get("/balance", h.balance)
	r.Get("/ledger", h.ledger)
}

type createTransactionRequest struct {
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Person      string            `json:"person"`
	Category    string            `json:"category"`
	Amount      int64             `json:"amount"`
	Direction   finance.Direction `json:"direction"`
	Account     finance.Account   `json:"account"`
	Status      finance.Status    `json:"status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	date, err := respond.Date(req.Date, h.loc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), finance.CreateParams{
		Date:        date,
		Description: req.Description,
		Person:      req.Person,
		Category:    req.Category,
		Amount:      req.Amount,
		Direction:   req.Direction,
		Account:     req.Account,
		Status:      req.Status,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) filter(r *http.Request) (finance.ListFilter, error) {
	return ParseFilter(r, h.loc)
}

// ParseFilter reads the ledger criteria: q, category, direction, account,
// status, from and to. Enum values are matched case-insensitively.
func ParseFilter(r *http.Request, loc *time.Location) (finance.ListFilter, error) {
	spec, err := respond.Spec(r, "direction", loc)
	if err != nil {
		return finance.ListFilter{}, err
	}

	q := r.URL.Query()

	return finance.ListFilter{
		Spec:    spec,
		Account: finance.Account(strings.ToLower(q.Get("account"))),
		Status:  finance.Status(strings.ToLower(q.Get("status"))),
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

type updateTransactionRequest struct {
	Date        *string            `json:"date,omitempty"`
	Description *string            `json:"description,omitempty"`
	Person      *string            `json:"person,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Amount      *int64             `json:"amount,omitempty"`
	Direction   *finance.Direction `json:"direction,omitempty"`
	Account     *finance.Account   `json:"account,omitempty"`
	Status      *finance.Status    `json:"status,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Date != nil {
		date, err := respond.Date(*req.Date, h.loc)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		tx.Date = date
	}

	if req.Description != nil {
		tx.Description = *req.Description
	}

	if req.Person != nil {
		tx.Person = *req.Person
	}

	if req.Category != nil {
		tx.Category = *req.Category
	}

	if req.Amount != nil {
		tx.Amount = *req.Amount
	}

	if req.Direction != nil {
		tx.Direction = *req.Direction
	}

	if req.Account != nil {
		tx.Account = *req.Account
	}

	if req.Status != nil {
		tx.Status = *req.Status
	}

	if err := h.svc.Update(r.Context(), tx); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) breakdown(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Breakdown(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, breakdownResponse{
		Direction: b.Direction,
		Total:     b.Total,
		Count:     b.Count,
		Buckets:   toBuckets(b.Buckets),
		Slices:    toSlices(b.Slices),
	})
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	sheet, err := h.svc.BalanceSheet(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, balanceResponse{
		Income:         sheet.Income,
		Expense:        sheet.Expense,
		Net:            sheet.Net,
		IncomeBuckets:  toBuckets(sheet.IncomeBuckets),
		IncomeSlices:   toSlices(sheet.IncomeSlices),
		ExpenseBuckets: toBuckets(sheet.ExpenseBuckets),
		ExpenseSlices:  toSlices(sheet.ExpenseSlices),
	})
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	account := filter.Account
	filter.Account = ""

	l, err := h.svc.Ledger(r.Context(), account, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := ledgerResponse{
		Account: l.Account,
		Opening: l.Opening,
		In:      l.In,
		Out:     l.Out,
		Closing: l.Closing,
		Entries: make([]ledgerEntryResponse, len(l.Entries)),
	}

	for i, e := range l.Entries {
		resp.Entries[i] = ledgerEntryResponse{transactionResponse: toResponse(e.Transaction), Balance: e.Balance}
	}

	respond.JSON(w, http.StatusOK, resp)
}
