package scheduling

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=scheduling

// Reader is the read side the dashboard depends on. It can be served by a
// source other than the Repository.
type Reader interface {
	// ListAppointments returns every appointment with client name and
	// psychologist name and colour filled in.
	ListAppointments(ctx context.Context) ([]*Appointment, error)
	// ListPsychologists returns every psychologist ordered by name.
	ListPsychologists(ctx context.Context) ([]*Psychologist, error)
}

type Repository interface {
	Reader

	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ListClients(ctx context.Context) ([]*Client, error)

	CreatePsychologist(ctx context.Context, p *Psychologist) error
	GetPsychologist(ctx context.Context, id uuid.UUID) (*Psychologist, error)
	DeletePsychologist(ctx context.Context, id uuid.UUID) error

	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointment(ctx context.Context, a *Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

const defaultColor = "#3B82F6"

type Service struct {
	repo   Repository
	reader Reader
	loc    *time.Location
}

type Option func(*Service)

// WithReader serves the dashboard and calendar from r instead of the repository.
func WithReader(r Reader) Option {
	return func(s *Service) { s.reader = r }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		reader: repo,
		loc:    time.Local,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Location returns the practice time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

type ClientParams struct {
	Name  string
	Phone string
	Email string
	Notes string
}

func (p ClientParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if p.Email != "" {
		if err := checkmail.ValidateFormat(p.Email); err != nil {
			return fmt.Errorf("%w: email %q: %v", ErrInvalid, p.Email, err)
		}
	}

	return nil
}

func (s *Service) CreateClient(ctx context.Context, params ClientParams) (*Client, error) {
	params = params.trimmed()
	if err := params.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		Name:   params.Name,
		Phone:  params.Phone,
		Email:  params.Email,
		Notes:  params.Notes,
		Active: true,
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) UpdateClient(ctx context.Context, c *Client) error {
	params := ClientParams{Name: c.Name, Phone: c.Phone, Email: c.Email, Notes: c.Notes}.trimmed()
	if err := params.validate(); err != nil {
		return err
	}

	c.Name, c.Phone, c.Email, c.Notes = params.Name, params.Phone, params.Email, params.Notes

	return s.repo.UpdateClient(ctx, c)
}

func (s *Service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, id)
}

// ListClients returns the clients whose name, phone or email contains query.
func (s *Service) ListClients(ctx context.Context, query string) ([]*Client, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return clients, nil
	}

	return slices.DeleteFunc(clients, func(c *Client) bool {
		return len(pipeline.Filter([]textRecord{{c.Name, c.Phone, c.Email}}, pipeline.Spec{Query: query})) == 0
	}), nil
}

func (p ClientParams) trimmed() ClientParams {
	return ClientParams{
		Name:  strings.TrimSpace(p.Name),
		Phone: strings.TrimSpace(p.Phone),
		Email: strings.TrimSpace(p.Email),
		Notes: strings.TrimSpace(p.Notes),
	}
}

type PsychologistParams struct {
	Name  string
	Title string
	Color string
}

func (s *Service) CreatePsychologist(ctx context.Context, params PsychologistParams) (*Psychologist, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	color := strings.TrimSpace(params.Color)
	if color == "" {
		color = defaultColor
	}

	if !validColor(color) {
		return nil, fmt.Errorf("%w: colour %q is not #RRGGBB", ErrInvalid, color)
	}

	p := &Psychologist{
		Name:  name,
		Title: strings.TrimSpace(params.Title),
		Color: color,
	}
	if err := s.repo.CreatePsychologist(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) ListPsychologists(ctx context.Context) ([]*Psychologist, error) {
	return s.repo.ListPsychologists(ctx)
}

func (s *Service) DeletePsychologist(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePsychologist(ctx, id)
}

type AppointmentParams struct {
	ClientID       uuid.UUID
	PsychologistID uuid.UUID
	Date           time.Time
	Hour           int
	Minute         int
	Duration       int
	Fee            int64
	Description    string
	Status         Status
}

func (s *Service) CreateAppointment(ctx context.Context, params AppointmentParams) (*Appointment, error) {
	a := &Appointment{
		ClientID:       params.ClientID,
		PsychologistID: params.PsychologistID,
		Date:           pipeline.DateIn(params.Date, s.loc),
		Hour:           params.Hour,
		Minute:         params.Minute,
		Duration:       params.Duration,
		Fee:            params.Fee,
		Description:    strings.TrimSpace(params.Description),
		Status:         params.Status,
	}

	if err := s.prepare(ctx, a); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	a.Date = pipeline.DateIn(a.Date, s.loc)

	if err := s.prepare(ctx, a); err != nil {
		return err
	}

	return s.repo.UpdateAppointment(ctx, a)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAppointment(ctx, id)
}

// ListAppointments returns the appointments matching spec ordered by start.
// Spec.Category matches the psychologist's name and Spec.Type the status.
func (s *Service) ListAppointments(ctx context.Context, spec pipeline.Spec) ([]*Appointment, error) {
	all, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	out := pipeline.Filter(all, spec)
	s.sortByStart(out)

	return out, nil
}

// prepare validates a and fills in the joined client and psychologist fields.
func (s *Service) prepare(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}

	switch {
	case a.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalid)
	case a.Hour < 0 || a.Hour > 23:
		return fmt.Errorf("%w: hour must be between 0 and 23", ErrInvalid)
	case a.Minute < 0 || a.Minute > 59:
		return fmt.Errorf("%w: minute must be between 0 and 59", ErrInvalid)
	case a.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalid)
	case a.Fee < 0:
		return fmt.Errorf("%w: fee cannot be negative", ErrInvalid)
	case !a.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, a.Status)
	}

	client, err := s.repo.GetClient(ctx, a.ClientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown client", ErrInvalid)
		}

		return fmt.Errorf("getting client: %w", err)
	}

	psy, err := s.repo.GetPsychologist(ctx, a.PsychologistID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown psychologist", ErrInvalid)
		}

		return fmt.Errorf("getting psychologist: %w", err)
	}

	a.ClientName = client.Name
	a.PsychologistName = psy.Name
	a.PsychologistColor = psy.Color

	return nil
}

func (s *Service) sortByStart(as []*Appointment) {
	slices.SortStableFunc(as, func(a, b *Appointment) int {
		return a.Start(s.loc).Compare(b.Start(s.loc))
	})
}

func validColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}

	for _, r := range strings.ToLower(c[1:]) {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}

	return true
}

// textRecord lets plain fields go through the pipeline's text matcher.
type textRecord []string

func (t textRecord) RecordDate() time.Time  { return time.Time{} }
func (t textRecord) RecordCategory() string { return "" }
func (t textRecord) RecordType() string     { return "" }
func (t textRecord) RecordAmount() int64    { return 0 }
func (t textRecord) RecordText() []string   { return t }
