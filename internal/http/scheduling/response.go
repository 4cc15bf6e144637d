package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

type clientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toClientResponse(c *scheduling.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Notes:     c.Notes,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
	}
}

type psychologistResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Title string    `json:"title,omitempty"`
	Color string    `json:"color"`
}

func toPsychologistList(ps []*scheduling.Psychologist) []psychologistResponse {
	resp := make([]psychologistResponse, len(ps))
	for i, p := range ps {
		resp[i] = toPsychologistResponse(p)
	}

	return resp
}

func toPsychologistResponse(p *scheduling.Psychologist) psychologistResponse {
	return psychologistResponse{ID: p.ID, Name: p.Name, Title: p.Title, Color: p.Color}
}

type appointmentResponse struct {
	ID                uuid.UUID         `json:"id"`
	ClientID          uuid.UUID         `json:"client_id"`
	ClientName        string            `json:"client_name"`
	PsychologistID    uuid.UUID         `json:"psychologist_id"`
	PsychologistName  string            `json:"psychologist_name"`
	PsychologistColor string            `json:"psychologist_color,omitempty"`
	Date              string            `json:"date"`
	Start             *time.Time        `json:"start,omitempty"`
	End               *time.Time        `json:"end,omitempty"`
	Hour              int               `json:"hour"`
	Minute            int               `json:"minute"`
	Duration          int               `json:"duration"`
	Fee               int64             `json:"fee"`
	Description       string            `json:"description,omitempty"`
	Status            scheduling.Status `json:"status"`
}

// toAppointmentResponse leaves date, start and end empty for an appointment
// whose date could not be read.
func (h *Handler) toAppointmentResponse(a *scheduling.Appointment) appointmentResponse {
	resp := appointmentResponse{
		ID:                a.ID,
		ClientID:          a.ClientID,
		ClientName:        a.ClientName,
		PsychologistID:    a.PsychologistID,
		PsychologistName:  a.PsychologistName,
		PsychologistColor: a.PsychologistColor,
		Hour:              a.Hour,
		Minute:            a.Minute,
		Duration:          a.Duration,
		Fee:               a.Fee,
		Description:       a.Description,
		Status:            a.Status,
	}

	if !a.Date.IsZero() {
		loc := h.svc.Location()
		resp.Date = a.Date.Format(time.DateOnly)
		resp.Start = new(a.Start(loc))
		resp.End = new(a.End(loc))
	}

	return resp
}

func (h *Handler) toAppointmentList(as []*scheduling.Appointment) []appointmentResponse {
	resp := make([]appointmentResponse, len(as))
	for i, a := range as {
		resp[i] = h.toAppointmentResponse(a)
	}

	return resp
}

type dashboardResponse struct {
	Today         []appointmentResponse  `json:"today"`
	TodayCount    int                    `json:"today_count"`
	WeekCount     int                    `json:"week_count"`
	MonthRevenue  int64                  `json:"month_revenue"`
	ActiveClients int                    `json:"active_clients"`
	Psychologists []psychologistResponse `json:"psychologists"`
	Upcoming      []appointmentResponse  `json:"upcoming"`
}

type dayResponse struct {
	Date         string                `json:"date"`
	Appointments []appointmentResponse `json:"appointments"`
}

type monthResponse struct {
	Year    int           `json:"year"`
	Month   int           `json:"month"`
	Leading int           `json:"leading"`
	Days    []dayResponse `json:"days"`
}
