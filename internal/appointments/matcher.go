package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fisiogestor/whatsapp-confirm/internal/patients"
	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

var (
	ErrPatientNotFound      = errors.New("appointments: no patient matches the phone variants")
	ErrNoPendingAppointment = errors.New("appointments: no pending future appointment for any candidate")
)

// PatientFinder locates patient candidates by phone.
type PatientFinder interface {
	FindByPhoneVariants(ctx context.Context, variants []string) ([]patients.Patient, error)
}

// PendingLister lists a patient's scheduled appointments inside a date window.
type PendingLister interface {
	ListPendingWindow(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]Appointment, error)
}

// Match is the resolved (patient, appointment) pair. Upcoming carries the
// remaining future appointments of the selected patient, nearest first.
type Match struct {
	Patient     patients.Patient
	Appointment Appointment
	Upcoming    []Appointment
}

// Matcher finds which patient and appointment an inbound reply concerns.
// Candidates are tried sequentially and the first one with a strictly-future
// scheduled appointment wins; queries stop there.
type Matcher struct {
	finder     PatientFinder
	lister     PendingLister
	windowDays int
	loc        *time.Location
	logger     *logging.Logger
}

func NewMatcher(finder PatientFinder, lister PendingLister, windowDays int, loc *time.Location, logger *logging.Logger) *Matcher {
	if windowDays <= 0 {
		windowDays = 14
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Matcher{finder: finder, lister: lister, windowDays: windowDays, loc: loc, logger: logger}
}

// Match resolves the phone variants to a patient and their nearest pending
// appointment. Returns ErrPatientNotFound when no patient record matches and
// ErrNoPendingAppointment when candidates exist but none has a future
// scheduled appointment; the two misses are distinguished for diagnostics.
func (m *Matcher) Match(ctx context.Context, variants []string, now time.Time) (*Match, error) {
	candidates, err := m.finder.FindByPhoneVariants(ctx, variants)
	if err != nil {
		return nil, fmt.Errorf("appointments: match: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrPatientNotFound
	}
	if len(candidates) > 1 {
		// Duplicate registrations or cross-tenant reuse of the same number;
		// first plausible candidate wins, surface it for data-quality review.
		m.logger.Warn("multiple patient records share phone",
			"candidates", len(candidates),
			"phone", candidates[0].Phone,
		)
	}

	now = now.In(m.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.loc)
	to := from.AddDate(0, 0, m.windowDays)

	for _, candidate := range candidates {
		pending, err := m.lister.ListPendingWindow(ctx, candidate.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("appointments: list pending for %s: %w", candidate.ID, err)
		}
		future := m.futureOnly(pending, now)
		if len(future) == 0 {
			if len(pending) > 0 {
				m.logger.Info("candidate has only past pending appointments, skipping",
					"patient_id", candidate.ID,
					"clinic_id", candidate.ClinicID,
					"pending", len(pending),
				)
			}
			continue
		}
		return &Match{
			Patient:     candidate,
			Appointment: future[0],
			Upcoming:    future[1:],
		}, nil
	}
	return nil, ErrNoPendingAppointment
}

// futureOnly keeps appointments whose date+time is strictly after now. A
// same-day appointment earlier than the current clock is excluded even though
// its date matches the window.
func (m *Matcher) futureOnly(list []Appointment, now time.Time) []Appointment {
	out := make([]Appointment, 0, len(list))
	for _, a := range list {
		startsAt, err := a.StartsAt(m.loc)
		if err != nil {
			m.logger.Warn("appointment has unparsable time, skipping",
				"appointment_id", a.ID, "time", a.Time, "error", err)
			continue
		}
		if startsAt.After(now) {
			out = append(out, a)
		}
	}
	return out
}
