// Package notify dispatches feedback messages after an appointment status
// change. It is deliberately decoupled from the authoritative write: nothing
// here can fail the webhook response, messaging outages only cost feedback.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fisiogestor/whatsapp-confirm/internal/appointments"
	"github.com/fisiogestor/whatsapp-confirm/internal/clinic"
	"github.com/fisiogestor/whatsapp-confirm/internal/evolution"
	"github.com/fisiogestor/whatsapp-confirm/internal/messagelog"
	"github.com/fisiogestor/whatsapp-confirm/internal/observability/metrics"
	"github.com/fisiogestor/whatsapp-confirm/internal/patients"
	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

// Outcome is the resolved state change handed over by the webhook handler.
type Outcome struct {
	Appointment  appointments.Appointment
	Patient      patients.Patient
	Confirmed    bool
	StartsAt     time.Time
	SenderDigits string
}

// ClinicDirectory resolves tenant credentials and professional contacts.
type ClinicDirectory interface {
	GetSettings(ctx context.Context, clinicID uuid.UUID) (*clinic.Settings, error)
	GetProfessional(ctx context.Context, id uuid.UUID) (*clinic.Professional, error)
}

// TextSender posts one outbound WhatsApp message.
type TextSender interface {
	SendText(ctx context.Context, instance, apiKey, number, text string) (string, error)
}

// AuditLog records send attempts.
type AuditLog interface {
	Append(ctx context.Context, entry messagelog.Entry) error
}

// Service sends the patient feedback and professional notification for one
// outcome. Every step is best-effort and individually logged.
type Service struct {
	directory ClinicDirectory
	sender    TextSender
	audit     AuditLog
	metrics   *metrics.ConfirmationMetrics
	logger    *logging.Logger
}

func NewService(directory ClinicDirectory, sender TextSender, audit AuditLog, m *metrics.ConfirmationMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{directory: directory, sender: sender, audit: audit, metrics: m, logger: logger}
}

// Dispatch looks up the clinic credentials and the assigned professional
// concurrently, then sends the patient feedback followed by the professional
// notification. Failures are logged and swallowed.
func (s *Service) Dispatch(ctx context.Context, outcome Outcome) {
	if s.directory == nil || s.sender == nil {
		s.logger.Debug("notify: directory or sender not configured, skipping")
		return
	}

	var (
		settings     *clinic.Settings
		settingsErr  error
		professional *clinic.Professional
		profErr      error
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		settings, settingsErr = s.directory.GetSettings(ctx, outcome.Appointment.ClinicID)
	}()
	go func() {
		defer wg.Done()
		professional, profErr = s.directory.GetProfessional(ctx, outcome.Appointment.ProfessionalID)
	}()
	wg.Wait()

	if settingsErr != nil || !settings.Configured() {
		s.logger.Info("notify: clinic has no messaging credentials, skipping feedback",
			"clinic_id", outcome.Appointment.ClinicID,
			"error", settingsErr,
		)
		return
	}
	if profErr != nil {
		s.logger.Warn("notify: professional lookup failed",
			"professional_id", outcome.Appointment.ProfessionalID,
			"error", profErr,
		)
	}

	patientNumber := outcome.SenderDigits
	if patientNumber == "" {
		patientNumber = outcome.Patient.Phone
	}
	feedback := evolution.PatientFeedback(outcome.Confirmed, outcome.StartsAt)
	s.send(ctx, settings, outcome, messagelog.TypePatientFeedback, patientNumber, feedback)

	if profErr == nil && professional != nil && professional.Phone != "" {
		notice := evolution.ProfessionalNotice(outcome.Patient.FullName, outcome.Confirmed, outcome.StartsAt)
		s.send(ctx, settings, outcome, messagelog.TypeProfessionalNotice, professional.Phone, notice)
	}
}

func (s *Service) send(ctx context.Context, settings *clinic.Settings, outcome Outcome, kind, number, text string) {
	msgID, err := s.sender.SendText(ctx, settings.EvolutionInstance, settings.EvolutionAPIKey, number, text)
	status := messagelog.StatusSent
	if err != nil {
		status = messagelog.StatusFailed
		s.logger.Warn("notify: send failed",
			"kind", kind,
			"appointment_id", outcome.Appointment.ID,
			"error", err,
		)
	}
	s.metrics.ObserveOutbound(kind, status)

	if s.audit == nil {
		return
	}
	apptID := outcome.Appointment.ID
	clinicID := outcome.Appointment.ClinicID
	entry := messagelog.Entry{
		AppointmentID:     &apptID,
		ClinicID:          &clinicID,
		PatientPhone:      number,
		MessageType:       kind,
		Content:           text,
		Status:            status,
		ExternalMessageID: msgID,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Warn("notify: audit append failed", "kind", kind, "error", err)
	}
}
