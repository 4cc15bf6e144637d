package importcsv

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/finance"
	"github.com/MrJamesThe3rd/praxis/internal/http/respond"
)

// Importer is the statement import the handler drives.
type Importer interface {
	Preview(ctx context.Context, r io.Reader) ([]finance.CreateParams, error)
	Import(ctx context.Context, r io.Reader) (*finance.ImportResult, error)
}

type Handler struct {
	svc      Importer
	maxBytes int64
}

func NewHandler(svc Importer, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	return &Handler{svc: svc, maxBytes: maxBytes}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importStatement)
	r.Post("/preview", h.preview)
}

type paramsDTO struct {
	Date           string            `json:"date"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Amount         int64             `json:"amount"`
	Direction      finance.Direction `json:"direction"`
	Account        finance.Account   `json:"account"`
	RawDescription string            `json:"raw_description"`
}

type importedDTO struct {
	ID uuid.UUID `json:"id"`
	paramsDTO
}

type importResponse struct {
	Imported []importedDTO `json:"imported"`
	Skipped  []paramsDTO   `json:"skipped"`
}

func toDTO(p finance.CreateParams) paramsDTO {
	return paramsDTO{
		Date:           p.Date.Format(time.DateOnly),
		Description:    p.Description,
		Category:       p.Category,
		Amount:         p.Amount,
		Direction:      p.Direction,
		Account:        p.Account,
		RawDescription: p.RawDescription,
	}
}

// file opens the multipart "file" field.
func (h *Handler) file(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return nil, respond.BadRequest("failed to parse form: %v", err)
	}

	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, respond.BadRequest("file field is required")
	}

	return f, nil
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	f, err := h.file(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer f.Close()

	params, err := h.svc.Preview(r.Context(), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]paramsDTO, len(params))
	for i, p := range params {
		resp[i] = toDTO(p)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	f, err := h.file(w, r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer f.Close()

	res, err := h.svc.Import(r.Context(), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := importResponse{
		Imported: make([]importedDTO, len(res.Imported)),
		Skipped:  make([]paramsDTO, len(res.Skipped)),
	}

	for i, tx := range res.Imported {
		resp.Imported[i] = importedDTO{
			ID: tx.ID,
			paramsDTO: toDTO(finance.CreateParams{
				Date:           tx.Date,
				Description:    tx.Description,
				Category:       tx.Category,
				Amount:         tx.Amount,
				Direction:      tx.Direction,
				Account:        tx.Account,
				RawDescription: tx.RawDescription,
			}),
		}
	}

	for i, p := range res.Skipped {
		resp.Skipped[i] = toDTO(p)
	}

	status := http.StatusCreated
	if len(res.Imported) == 0 {
		status = http.StatusOK
	}

	respond.JSON(w, status, resp)
}
