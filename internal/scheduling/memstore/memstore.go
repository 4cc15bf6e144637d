// Package memstore keeps scheduling data in process memory.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

type Store struct {
	mu            sync.RWMutex
	clients       map[uuid.UUID]scheduling.Client
	psychologists map[uuid.UUID]scheduling.Psychologist
	appointments  map[uuid.UUID]scheduling.Appointment
	now           func() time.Time
}

func New() *Store {
	return &Store{
		clients:       make(map[uuid.UUID]scheduling.Client),
		psychologists: make(map[uuid.UUID]scheduling.Psychologist),
		appointments:  make(map[uuid.UUID]scheduling.Appointment),
		now:           time.Now,
	}
}

// byName orders names the way a Turkish reader expects (Ç after C, İ after I).
func byName() func(a, b string) int {
	c := collate.New(language.Turkish)
	return c.CompareString
}

func (s *Store) CreateClient(_ context.Context, c *scheduling.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New()
	c.CreatedAt = s.now()
	s.clients[c.ID] = *c

	return nil
}

func (s *Store) GetClient(_ context.Context, id uuid.UUID) (*scheduling.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}

	return &c, nil
}

func (s *Store) UpdateClient(_ context.Context, c *scheduling.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.clients[c.ID]
	if !ok {
		return scheduling.ErrNotFound
	}

	c.CreatedAt = old.CreatedAt
	s.clients[c.ID] = *c

	return nil
}

func (s *Store) DeleteClient(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return scheduling.ErrNotFound
	}

	for _, a := range s.appointments {
		if a.ClientID == id {
			return scheduling.ErrInUse
		}
	}

	delete(s.clients, id)

	return nil
}

func (s *Store) ListClients(_ context.Context) ([]*scheduling.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scheduling.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, &c)
	}

	cmp := byName()
	slices.SortFunc(out, func(a, b *scheduling.Client) int { return cmp(a.Name, b.Name) })

	return out, nil
}

func (s *Store) CreatePsychologist(_ context.Context, p *scheduling.Psychologist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.New()
	p.CreatedAt = s.now()
	s.psychologists[p.ID] = *p

	return nil
}

func (s *Store) GetPsychologist(_ context.Context, id uuid.UUID) (*scheduling.Psychologist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.psychologists[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}

	return &p, nil
}

func (s *Store) DeletePsychologist(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.psychologists[id]; !ok {
		return scheduling.ErrNotFound
	}

	for _, a := range s.appointments {
		if a.PsychologistID == id {
			return scheduling.ErrInUse
		}
	}

	delete(s.psychologists, id)

	return nil
}

func (s *Store) ListPsychologists(_ context.Context) ([]*scheduling.Psychologist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scheduling.Psychologist, 0, len(s.psychologists))
	for _, p := range s.psychologists {
		out = append(out, &p)
	}

	cmp := byName()
	slices.SortFunc(out, func(a, b *scheduling.Psychologist) int { return cmp(a.Name, b.Name) })

	return out, nil
}

func (s *Store) CreateAppointment(_ context.Context, a *scheduling.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.New()
	a.CreatedAt = s.now()
	s.appointments[a.ID] = *a

	return nil
}

func (s *Store) GetAppointment(_ context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}

	s.join(&a)

	return &a, nil
}

func (s *Store) UpdateAppointment(_ context.Context, a *scheduling.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.appointments[a.ID]
	if !ok {
		return scheduling.ErrNotFound
	}

	a.CreatedAt = old.CreatedAt
	a.UpdatedAt = new(s.now())
	s.appointments[a.ID] = *a

	return nil
}

func (s *Store) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return scheduling.ErrNotFound
	}

	delete(s.appointments, id)

	return nil
}

// ListAppointments returns every appointment ordered by date and time.
func (s *Store) ListAppointments(_ context.Context) ([]*scheduling.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scheduling.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		s.join(&a)
		out = append(out, &a)
	}

	slices.SortFunc(out, func(a, b *scheduling.Appointment) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		return (a.Hour*60 + a.Minute) - (b.Hour*60 + b.Minute)
	})

	return out, nil
}

// join refreshes the denormalised client and psychologist fields.
func (s *Store) join(a *scheduling.Appointment) {
	if c, ok := s.clients[a.ClientID]; ok {
		a.ClientName = c.Name
	}

	if p, ok := s.psychologists[a.PsychologistID]; ok {
		a.PsychologistName = p.Name
		a.PsychologistColor = p.Color
	}
}
