// Package supabase reads appointments and psychologists from a Supabase
// project through its PostgREST endpoint. It never writes.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

const (
	appointmentSelect  = "id,date,hour,minute,duration,fee,description,status,client_id,psychologist_id,clients(name),psychologists(name,color)"
	psychologistSelect = "id,name,title,color"
)

type Client struct {
	baseURL string
	apiKey  string
	loc     *time.Location
	client  *http.Client
}

// NewClient returns a reader for the project at baseURL. Dates are read as
// calendar days in loc.
func NewClient(baseURL, apiKey string, loc *time.Location, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		loc:     loc,
		client:  &http.Client{Timeout: timeout},
	}
}

type appointmentRow struct {
	ID             uuid.UUID        `json:"id"`
	Date           string           `json:"date"`
	Hour           int              `json:"hour"`
	Minute         int              `json:"minute"`
	Duration       int              `json:"duration"`
	Fee            *decimal.Decimal `json:"fee"` // Lira
	Description    *string          `json:"description"`
	Status         *string          `json:"status"`
	ClientID       uuid.UUID        `json:"client_id"`
	PsychologistID uuid.UUID        `json:"psychologist_id"`
	Client         *struct {
		Name string `json:"name"`
	} `json:"clients"`
	Psychologist *struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	} `json:"psychologists"`
}

type psychologistRow struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Title *string   `json:"title"`
	Color *string   `json:"color"`
}

// ListAppointments returns every appointment joined with client name and
// psychologist name and colour, ordered by date and time.
func (c *Client) ListAppointments(ctx context.Context) ([]*scheduling.Appointment, error) {
	var rows []appointmentRow

	q := url.Values{}
	q.Set("select", appointmentSelect)
	q.Set("order", "date.asc,hour.asc,minute.asc")

	if err := c.get(ctx, "appointments", q, &rows); err != nil {
		return nil, fmt.Errorf("fetching appointments: %w", err)
	}

	out := make([]*scheduling.Appointment, 0, len(rows))

	for _, r := range rows {
		out = append(out, r.toAppointment(c.loc))
	}

	return out, nil
}

// ListPsychologists returns every psychologist ordered by name.
func (c *Client) ListPsychologists(ctx context.Context) ([]*scheduling.Psychologist, error) {
	var rows []psychologistRow

	q := url.Values{}
	q.Set("select", psychologistSelect)
	q.Set("order", "name.asc")

	if err := c.get(ctx, "psychologists", q, &rows); err != nil {
		return nil, fmt.Errorf("fetching psychologists: %w", err)
	}

	out := make([]*scheduling.Psychologist, 0, len(rows))
	for _, r := range rows {
		out = append(out, &scheduling.Psychologist{
			ID:    r.ID,
			Name:  r.Name,
			Title: deref(r.Title),
			Color: deref(r.Color),
		})
	}

	return out, nil
}

func (c *Client) get(ctx context.Context, table string, q url.Values, dst any) error {
	endpoint := c.baseURL + "/rest/v1/" + table + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// toAppointment converts a row. An unparsable date is left zero so the
// appointment drops out of date-bounded views instead of failing the read.
func (r appointmentRow) toAppointment(loc *time.Location) *scheduling.Appointment {
	if loc == nil {
		loc = time.Local
	}

	a := &scheduling.Appointment{
		ID:             r.ID,
		ClientID:       r.ClientID,
		PsychologistID: r.PsychologistID,
		Hour:           r.Hour,
		Minute:         r.Minute,
		Duration:       r.Duration,
		Description:    deref(r.Description),
		Status:         scheduling.Status(deref(r.Status)),
	}

	a.Date = parseDate(r.Date, loc)

	if a.Status == "" {
		a.Status = scheduling.StatusScheduled
	}

	if r.Fee != nil {
		a.Fee = r.Fee.Shift(2).Round(0).IntPart()
	}

	if r.Client != nil {
		a.ClientName = r.Client.Name
	}

	if r.Psychologist != nil {
		a.PsychologistName = r.Psychologist.Name
		a.PsychologistColor = r.Psychologist.Color
	}

	return a
}

// parseDate reads a DATE or timestamp column as a calendar day in loc. A
// timestamp with an offset names an instant and takes loc's day at that
// instant; anything else is cut to its date part and taken as written.
func parseDate(raw string, loc *time.Location) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return pipeline.DateIn(t.In(loc), loc)
	}

	if len(raw) > len(time.DateOnly) {
		raw = raw[:len(time.DateOnly)]
	}

	d, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}
	}

	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
