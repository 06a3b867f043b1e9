package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("appointments: appointment not found")

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads and mutates appointment rows in Postgres.
type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// ListPendingWindow returns the patient's scheduled appointments with a date
// inside [from, to], ordered by date then time. The caller applies the
// strictly-in-the-future filter since it depends on the clock portion.
func (s *Store) ListPendingWindow(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	query := `
		SELECT id, patient_id, clinic_id, professional_id, date, time::text, status
		FROM appointments
		WHERE patient_id = $1
		  AND status = $2
		  AND date BETWEEN $3 AND $4
		ORDER BY date, time
	`
	rows, err := s.pool.Query(ctx, query, patientID, StatusScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: list pending window: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.ClinicID, &a.ProfessionalID, &a.Date, &a.Time, &a.Status); err != nil {
			return nil, fmt.Errorf("appointments: scan row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate rows: %w", err)
	}
	return out, nil
}

// Resolve applies the final status in a single-row write, stamping the moment
// the patient answered. Last write wins; there is no version check.
func (s *Store) Resolve(ctx context.Context, id uuid.UUID, status Status, respondedAt time.Time) error {
	query := `
		UPDATE appointments
		SET status = $2,
		    confirmed = $3,
		    responded_at = $4,
		    updated_at = now()
		WHERE id = $1
	`
	ct, err := s.pool.Exec(ctx, query, id, status, status == StatusConfirmed, respondedAt)
	if err != nil {
		return fmt.Errorf("appointments: resolve %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReminderCandidate joins the patient columns the dispatcher needs to send a
// confirmation request.
type ReminderCandidate struct {
	Appointment
	PatientName  string
	PatientPhone string
}

// ListForReminder returns scheduled appointments on the given date, with the
// patient's name and phone, across all clinics.
func (s *Store) ListForReminder(ctx context.Context, day time.Time) ([]ReminderCandidate, error) {
	query := `
		SELECT a.id, a.patient_id, a.clinic_id, a.professional_id, a.date, a.time::text, a.status,
		       p.full_name, p.phone
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.status = $1 AND a.date = $2
		ORDER BY a.clinic_id, a.time
	`
	rows, err := s.pool.Query(ctx, query, StatusScheduled, day)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for reminder: %w", err)
	}
	defer rows.Close()

	var out []ReminderCandidate
	for rows.Next() {
		var c ReminderCandidate
		if err := rows.Scan(&c.ID, &c.PatientID, &c.ClinicID, &c.ProfessionalID, &c.Date, &c.Time, &c.Status, &c.PatientName, &c.PatientPhone); err != nil {
			return nil, fmt.Errorf("appointments: scan reminder row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate reminder rows: %w", err)
	}
	return out, nil
}
