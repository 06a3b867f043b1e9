package appointments

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status values are persisted in Portuguese, matching the clinic application
// that owns the schema.
type Status string

const (
	StatusScheduled Status = "marcado"
	StatusConfirmed Status = "confirmado"
	StatusCancelled Status = "cancelado"
	StatusMissed    Status = "faltante"
	StatusCompleted Status = "realizado"
)

// Label returns the human-readable Portuguese word used in responses and
// outbound messages.
func (s Status) Label() string {
	return string(s)
}

// Appointment holds the columns the confirmation flow reads and mutates. Date
// and Time are stored in separate columns; Time is the clock portion rendered
// as "HH:MM" or "HH:MM:SS".
type Appointment struct {
	ID             uuid.UUID
	PatientID      uuid.UUID
	ClinicID       uuid.UUID
	ProfessionalID uuid.UUID
	Date           time.Time
	Time           string
	Status         Status
}

// StartsAt combines Date and Time in the given location.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	clock, err := parseClock(a.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointments: parse time %q: %w", a.Time, err)
	}
	y, m, d := a.Date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, loc), nil
}

func parseClock(v string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported clock format")
}
