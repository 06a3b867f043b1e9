// Package clinic exposes per-tenant data the notification fan-out needs:
// outbound messaging credentials and professional contacts.
package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSettingsNotFound     = errors.New("clinic: settings not found")
	ErrProfessionalNotFound = errors.New("clinic: professional not found")
)

// Settings holds a clinic's Evolution API credentials. A clinic without a
// configured instance simply gets no outbound feedback messages.
type Settings struct {
	ClinicID          uuid.UUID
	EvolutionInstance string
	EvolutionAPIKey   string
}

// Configured reports whether outbound sends are possible for this clinic.
func (s *Settings) Configured() bool {
	return s != nil && s.EvolutionInstance != "" && s.EvolutionAPIKey != ""
}

// Professional is the contact projection used for notifications.
type Professional struct {
	ID       uuid.UUID
	ClinicID uuid.UUID
	FullName string
	Phone    string
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

// GetSettings returns the clinic's messaging credentials.
func (s *Store) GetSettings(ctx context.Context, clinicID uuid.UUID) (*Settings, error) {
	query := `
		SELECT clinic_id, evolution_instance, evolution_api_key
		FROM clinic_settings
		WHERE clinic_id = $1
	`
	var out Settings
	if err := s.pool.QueryRow(ctx, query, clinicID).Scan(&out.ClinicID, &out.EvolutionInstance, &out.EvolutionAPIKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("clinic: get settings: %w", err)
	}
	return &out, nil
}

// GetProfessional returns the professional's contact record.
func (s *Store) GetProfessional(ctx context.Context, id uuid.UUID) (*Professional, error) {
	query := `
		SELECT id, clinic_id, full_name, COALESCE(phone, '')
		FROM professionals
		WHERE id = $1
	`
	var out Professional
	if err := s.pool.QueryRow(ctx, query, id).Scan(&out.ID, &out.ClinicID, &out.FullName, &out.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("clinic: get professional: %w", err)
	}
	return &out, nil
}
