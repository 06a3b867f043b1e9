package patients

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Patient is the read-only projection used during reply matching. The same
// phone number may appear under several clinics or duplicate registrations.
type Patient struct {
	ID       uuid.UUID
	FullName string
	ClinicID uuid.UUID
	Phone    string
}

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads patient records from Postgres.
type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// FindByPhoneVariants returns every patient whose stored phone equals any of
// the candidate strings, across all clinics, in insertion order.
func (s *Store) FindByPhoneVariants(ctx context.Context, variants []string) ([]Patient, error) {
	if len(variants) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, full_name, clinic_id, phone
		FROM patients
		WHERE phone = ANY($1)
		ORDER BY created_at
	`
	rows, err := s.pool.Query(ctx, query, variants)
	if err != nil {
		return nil, fmt.Errorf("patients: find by phone variants: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FullName, &p.ClinicID, &p.Phone); err != nil {
			return nil, fmt.Errorf("patients: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: iterate rows: %w", err)
	}
	return out, nil
}
