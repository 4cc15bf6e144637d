// Package scheduling manages clients, psychologists and appointments and
// derives the home dashboard from them.
package scheduling

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
	// ErrInUse is returned when deleting a client or psychologist that still
	// has appointments.
	ErrInUse = errors.New("still referenced by appointments")
)

type Client struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     string
	Notes     string
	Active    bool
	CreatedAt time.Time
}

type Psychologist struct {
	ID        uuid.UUID
	Name      string
	Title     string
	Color     string // Calendar colour, #RRGGBB
	CreatedAt time.Time
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}

	return false
}

// Appointment is a session booked for a client with a psychologist. Date holds
// the calendar day in the practice's location; Hour and Minute are wall-clock
// time on that day.
type Appointment struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	ClientName        string
	PsychologistID    uuid.UUID
	PsychologistName  string
	PsychologistColor string
	Date              time.Time
	Hour              int
	Minute            int
	Duration          int   // Minutes
	Fee               int64 // Kuruş
	Description       string
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// Start returns the moment the appointment begins in loc.
func (a *Appointment) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}

	y, m, d := a.Date.Date()

	return time.Date(y, m, d, a.Hour, a.Minute, 0, 0, loc)
}

// End returns Start plus the appointment's duration.
func (a *Appointment) End(loc *time.Location) time.Time {
	return a.Start(loc).Add(time.Duration(a.Duration) * time.Minute)
}

func (a *Appointment) RecordDate() time.Time  { return a.Date }
func (a *Appointment) RecordCategory() string { return a.PsychologistName }
func (a *Appointment) RecordType() string     { return string(a.Status) }
func (a *Appointment) RecordAmount() int64    { return a.Fee }

func (a *Appointment) RecordText() []string {
	return []string{a.ClientName, a.PsychologistName, a.Description}
}
