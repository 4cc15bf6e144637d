package scheduling

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/http/respond"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

type Handler struct {
	svc *scheduling.Service
	now func() time.Time
}

func NewHandler(svc *scheduling.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) ClientRoutes(r chi.Router) {
	r.Post("/", h.createClient)
	r.Get("/", h.listClients)
	r.Get("/{id}", h.getClient)
	r.Patch("/{id}", h.updateClient)
	r.Delete("/{id}", h.deleteClient)
}

func (h *Handler) PsychologistRoutes(r chi.Router) {
	r.Post("/", h.createPsychologist)
	r.Get("/", h.listPsychologists)
	r.Delete("/{id}", h.deletePsychologist)
}

func (h *Handler) AppointmentRoutes(r chi.Router) {
	r.Post("/", h.createAppointment)
	r.Get("/", h.listAppointments)
	r.Get("/{id}", h.getAppointment)
	r.Patch("/{id}", h.updateAppointment)
	r.Delete("/{id}", h.deleteAppointment)
}

// DashboardRoutes mounts /dashboard and /calendar/{year}/{month}.
func (h *Handler) DashboardRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/calendar/{year}/{month}", h.calendar)
}

type clientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.CreateClient(r.Context(), scheduling.ClientParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toClientResponse(c))
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toClientResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toClientResponse(c))
}

type updateClientRequest struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Email  *string `json:"email,omitempty"`
	Notes  *string `json:"notes,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateClientRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Name != nil {
		c.Name = *req.Name
	}

	if req.Phone != nil {
		c.Phone = *req.Phone
	}

	if req.Email != nil {
		c.Email = *req.Email
	}

	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := h.svc.UpdateClient(r.Context(), c); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toClientResponse(c))
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteClient(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type psychologistRequest struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Color string `json:"color"`
}

func (h *Handler) createPsychologist(w http.ResponseWriter, r *http.Request) {
	var req psychologistRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.CreatePsychologist(r.Context(), scheduling.PsychologistParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toPsychologistResponse(p))
}

func (h *Handler) listPsychologists(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListPsychologists(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPsychologistList(ps))
}

func (h *Handler) deletePsychologist(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.DeletePsychologist(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type appointmentRequest struct {
	ClientID       uuid.UUID         `json:"client_id"`
	PsychologistID uuid.UUID         `json:"psychologist_id"`
	Date           string            `json:"date"`
	Hour           int               `json:"hour"`
	Minute         int               `json:"minute"`
	Duration       int               `json:"duration"`
	Fee            int64             `json:"fee"`
	Description    string            `json:"description"`
	Status         scheduling.Status `json:"status"`
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	date, err := respond.Date(req.Date, h.svc.Location())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.CreateAppointment(r.Context(), scheduling.AppointmentParams{
		ClientID:       req.ClientID,
		PsychologistID: req.PsychologistID,
		Date:           date,
		Hour:           req.Hour,
		Minute:         req.Minute,
		Duration:       req.Duration,
		Fee:            req.Fee,
		Description:    req.Description,
		Status:         req.Status,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, h.toAppointmentResponse(a))
}

// listAppointments accepts q, psychologist (name), status, from and to.
func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	spec, err := respond.Spec(r, "status", h.svc.Location())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if p := r.URL.Query().Get("psychologist"); p != "" {
		spec.Category = p
	}

	appts, err := h.svc.ListAppointments(r.Context(), spec)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toAppointmentList(appts))
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.GetAppointment(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toAppointmentResponse(a))
}

type updateAppointmentRequest struct {
	ClientID       *uuid.UUID         `json:"client_id,omitempty"`
	PsychologistID *uuid.UUID         `json:"psychologist_id,omitempty"`
	Date           *string            `json:"date,omitempty"`
	Hour           *int               `json:"hour,omitempty"`
	Minute         *int               `json:"minute,omitempty"`
	Duration       *int               `json:"duration,omitempty"`
	Fee            *int64             `json:"fee,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Status         *scheduling.Status `json:"status,omitempty"`
}

func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateAppointmentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.GetAppointment(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.Date != nil {
		date, err := respond.Date(*req.Date, h.svc.Location())
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		a.Date = date
	}

	if req.ClientID != nil {
		a.ClientID = *req.ClientID
	}

	if req.PsychologistID != nil {
		a.PsychologistID = *req.PsychologistID
	}

	if req.Hour != nil {
		a.Hour = *req.Hour
	}

	if req.Minute != nil {
		a.Minute = *req.Minute
	}

	if req.Duration != nil {
		a.Duration = *req.Duration
	}

	if req.Fee != nil {
		a.Fee = *req.Fee
	}

	if req.Description != nil {
		a.Description = *req.Description
	}

	if req.Status != nil {
		a.Status = *req.Status
	}

	if err := h.svc.UpdateAppointment(r.Context(), a); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toAppointmentResponse(a))
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteAppointment(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d := h.svc.Dashboard(r.Context(), h.now())

	respond.JSON(w, http.StatusOK, dashboardResponse{
		Today:         h.toAppointmentList(d.Today),
		TodayCount:    d.TodayCount,
		WeekCount:     d.WeekCount,
		MonthRevenue:  d.MonthRevenue,
		ActiveClients: d.ActiveClients,
		Psychologists: toPsychologistList(d.Psychologists),
		Upcoming:      h.toAppointmentList(d.Upcoming),
	})
}

func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		respond.Error(w, r, respond.BadRequest("invalid year"))
		return
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		respond.Error(w, r, respond.BadRequest("invalid month"))
		return
	}

	m, err := h.svc.Calendar(r.Context(), year, time.Month(month))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := monthResponse{
		Year:    m.Year,
		Month:   int(m.Month),
		Leading: m.Leading,
		Days:    make([]dayResponse, len(m.Days)),
	}

	for i, d := range m.Days {
		resp.Days[i] = dayResponse{
			Date:         d.Date.Format(time.DateOnly),
			Appointments: h.toAppointmentList(d.Appointments),
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}
