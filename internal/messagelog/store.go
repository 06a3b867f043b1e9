// Package messagelog keeps the append-only audit trail of the WhatsApp
// exchange: one row per inbound reply and one per outbound send attempt.
// Writes are best-effort; callers log failures and move on.
package messagelog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Message types recorded in the audit trail.
const (
	TypeInboundReply        = "inbound_reply"
	TypePatientFeedback     = "patient_feedback"
	TypeProfessionalNotice  = "professional_notice"
	TypeConfirmationRequest = "confirmation_request"
)

// Delivery statuses.
const (
	StatusReceived = "received"
	StatusSent     = "sent"
	StatusFailed   = "failed"
)

// Entry is one audit row. AppointmentID may be nil for replies that never
// matched an appointment.
type Entry struct {
	AppointmentID     *uuid.UUID
	ClinicID          *uuid.UUID
	PatientPhone      string
	MessageType       string
	Content           string
	Status            string
	ExternalMessageID string
}

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// Append inserts one audit row.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO message_logs (
			id, appointment_id, clinic_id, patient_phone,
			message_type, content, status, external_message_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	`
	_, err := s.pool.Exec(ctx, query,
		uuid.New(), entry.AppointmentID, entry.ClinicID, entry.PatientPhone,
		entry.MessageType, entry.Content, entry.Status, entry.ExternalMessageID,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("messagelog: append %s: %w", entry.MessageType, err)
	}
	return nil
}
