package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
	"github.com/MrJamesThe3rd/praxis/internal/scheduling"
)

// foreignKeyViolation is the SQLSTATE raised when a delete would orphan rows.
const foreignKeyViolation = "23503"

type Store struct {
	db  *sql.DB
	loc *time.Location
}

// New returns a store reading appointment dates as calendar days in loc.
func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) CreateClient(ctx context.Context, c *scheduling.Client) error {
	query := `
		INSERT INTO clients (name, phone, email, notes, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.Name, c.Phone, c.Email, c.Notes, c.Active).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

const selectClientColumns = `id, name, phone, email, notes, active, created_at`

func scanClient(sc scanner) (*scheduling.Client, error) {
	var c scheduling.Client
	if err := sc.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*scheduling.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *scheduling.Client) error {
	query := `
		UPDATE clients
		SET name = $1, phone = $2, email = $3, notes = $4, active = $5
		WHERE id = $6
	`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.Phone, c.Email, c.Notes, c.Active, c.ID)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}

	return expectOne(res, "updating client")
}

func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", mapConstraint(err))
	}

	return expectOne(res, "deleting client")
}

func (s *Store) ListClients(ctx context.Context) ([]*scheduling.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*scheduling.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}

	return clients, nil
}

func (s *Store) CreatePsychologist(ctx context.Context, p *scheduling.Psychologist) error {
	query := `
		INSERT INTO psychologists (name, title, color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, p.Name, p.Title, p.Color).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("creating psychologist: %w", err)
	}

	return nil
}

const selectPsychologistColumns = `id, name, title, color, created_at`

func scanPsychologist(sc scanner) (*scheduling.Psychologist, error) {
	var p scheduling.Psychologist
	if err := sc.Scan(&p.ID, &p.Name, &p.Title, &p.Color, &p.CreatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) GetPsychologist(ctx context.Context, id uuid.UUID) (*scheduling.Psychologist, error) {
	query := `SELECT ` + selectPsychologistColumns + ` FROM psychologists WHERE id = $1`

	p, err := scanPsychologist(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrNotFound
		}

		return nil, fmt.Errorf("getting psychologist: %w", err)
	}

	return p, nil
}

func (s *Store) ListPsychologists(ctx context.Context) ([]*scheduling.Psychologist, error) {
	query := `SELECT ` + selectPsychologistColumns + ` FROM psychologists ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing psychologists: %w", err)
	}
	defer rows.Close()

	var out []*scheduling.Psychologist

	for rows.Next() {
		p, err := scanPsychologist(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning psychologist: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating psychologist rows: %w", err)
	}

	return out, nil
}

func (s *Store) DeletePsychologist(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM psychologists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting psychologist: %w", mapConstraint(err))
	}

	return expectOne(res, "deleting psychologist")
}

// Expected column order: id, client_id, client name, psychologist_id, psychologist name, psychologist colour,
// date, hour, minute, duration, fee, description, status, created_at, updated_at
const selectAppointmentColumns = `
	a.id, a.client_id, c.name, a.psychologist_id, p.name, p.color,
	a.date, a.hour, a.minute, a.duration, a.fee, a.description, a.status, a.created_at, a.updated_at
`

const fromAppointments = `
	FROM appointments a
	JOIN clients c ON c.id = a.client_id
	JOIN psychologists p ON p.id = a.psychologist_id
`

func (s *Store) scanAppointment(sc scanner) (*scheduling.Appointment, error) {
	var a scheduling.Appointment

	var status string

	if err := sc.Scan(
		&a.ID, &a.ClientID, &a.ClientName, &a.PsychologistID, &a.PsychologistName, &a.PsychologistColor,
		&a.Date, &a.Hour, &a.Minute, &a.Duration, &a.Fee, &a.Description, &status, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Date = pipeline.DateIn(a.Date, s.loc)
	a.Status = scheduling.Status(status)

	return &a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *scheduling.Appointment) error {
	query := `
		INSERT INTO appointments (client_id, psychologist_id, date, hour, minute, duration, fee, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.ClientID,
		a.PsychologistID,
		a.Date.Format(time.DateOnly),
		a.Hour,
		a.Minute,
		a.Duration,
		a.Fee,
		a.Description,
		a.Status,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}

	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	query := `SELECT ` + selectAppointmentColumns + fromAppointments + `WHERE a.id = $1`

	a, err := s.scanAppointment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrNotFound
		}

		return nil, fmt.Errorf("getting appointment: %w", err)
	}

	return a, nil
}

// ListAppointments returns every appointment joined with its client's name and
// its psychologist's name and colour.
func (s *Store) ListAppointments(ctx context.Context) ([]*scheduling.Appointment, error) {
	query := `SELECT ` + selectAppointmentColumns + fromAppointments + `ORDER BY a.date ASC, a.hour ASC, a.minute ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	defer rows.Close()

	var out []*scheduling.Appointment

	for rows.Next() {
		a, err := s.scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}

		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointment rows: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, a *scheduling.Appointment) error {
	query := `
		UPDATE appointments
		SET client_id = $1, psychologist_id = $2, date = $3, hour = $4, minute = $5,
			duration = $6, fee = $7, description = $8, status = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.ClientID,
		a.PsychologistID,
		a.Date.Format(time.DateOnly),
		a.Hour,
		a.Minute,
		a.Duration,
		a.Fee,
		a.Description,
		a.Status,
		a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scheduling.ErrNotFound
		}

		return fmt.Errorf("updating appointment: %w", err)
	}

	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}

	return expectOne(res, "deleting appointment")
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return scheduling.ErrNotFound
	}

	return nil
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return scheduling.ErrInUse
	}

	return err
}
