package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fisiogestor/whatsapp-confirm/internal/appointments"
	"github.com/fisiogestor/whatsapp-confirm/internal/clinic"
	"github.com/fisiogestor/whatsapp-confirm/internal/messagelog"
	"github.com/fisiogestor/whatsapp-confirm/internal/patients"
	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

type stubDirectory struct {
	settings     *clinic.Settings
	settingsErr  error
	professional *clinic.Professional
	profErr      error
}

func (s *stubDirectory) GetSettings(ctx context.Context, clinicID uuid.UUID) (*clinic.Settings, error) {
	return s.settings, s.settingsErr
}

func (s *stubDirectory) GetProfessional(ctx context.Context, id uuid.UUID) (*clinic.Professional, error) {
	return s.professional, s.profErr
}

type sentMessage struct {
	instance, apiKey, number, text string
}

type stubSender struct {
	sent []sentMessage
	err  error
}

func (s *stubSender) SendText(ctx context.Context, instance, apiKey, number, text string) (string, error) {
	s.sent = append(s.sent, sentMessage{instance, apiKey, number, text})
	if s.err != nil {
		return "", s.err
	}
	return "MSG123", nil
}

type stubAudit struct {
	entries []messagelog.Entry
	err     error
}

func (s *stubAudit) Append(ctx context.Context, entry messagelog.Entry) error {
	s.entries = append(s.entries, entry)
	return s.err
}

func testOutcome() Outcome {
	return Outcome{
		Appointment: appointments.Appointment{
			ID:             uuid.New(),
			ClinicID:       uuid.New(),
			ProfessionalID: uuid.New(),
			Status:         appointments.StatusConfirmed,
		},
		Patient:      patients.Patient{ID: uuid.New(), FullName: "Maria Souza", Phone: "6699516222"},
		Confirmed:    true,
		StartsAt:     time.Date(2026, 9, 2, 14, 30, 0, 0, time.UTC),
		SenderDigits: "66999516222",
	}
}

func TestDispatchSendsPatientThenProfessional(t *testing.T) {
	dir := &stubDirectory{
		settings:     &clinic.Settings{EvolutionInstance: "clinica-centro", EvolutionAPIKey: "secret"},
		professional: &clinic.Professional{FullName: "Dra. Paula", Phone: "66988887777"},
	}
	sender := &stubSender{}
	audit := &stubAudit{}
	svc := NewService(dir, sender, audit, nil, logging.Default())

	svc.Dispatch(context.Background(), testOutcome())

	assert.Len(t, sender.sent, 2)
	assert.Equal(t, "66999516222", sender.sent[0].number)
	assert.Contains(t, sender.sent[0].text, "confirmada")
	assert.Equal(t, "66988887777", sender.sent[1].number)
	assert.Contains(t, sender.sent[1].text, "CONFIRMOU")

	assert.Len(t, audit.entries, 2)
	assert.Equal(t, messagelog.TypePatientFeedback, audit.entries[0].MessageType)
	assert.Equal(t, messagelog.StatusSent, audit.entries[0].Status)
	assert.Equal(t, "MSG123", audit.entries[0].ExternalMessageID)
	assert.Equal(t, messagelog.TypeProfessionalNotice, audit.entries[1].MessageType)
}

func TestDispatchSkipsWhenCredentialsMissing(t *testing.T) {
	dir := &stubDirectory{settingsErr: clinic.ErrSettingsNotFound}
	sender := &stubSender{}
	svc := NewService(dir, sender, &stubAudit{}, nil, logging.Default())

	svc.Dispatch(context.Background(), testOutcome())

	assert.Empty(t, sender.sent)
}

func TestDispatchSkipsProfessionalWithoutPhone(t *testing.T) {
	dir := &stubDirectory{
		settings:     &clinic.Settings{EvolutionInstance: "inst", EvolutionAPIKey: "key"},
		professional: &clinic.Professional{FullName: "Dr. Sem Fone"},
	}
	sender := &stubSender{}
	svc := NewService(dir, sender, &stubAudit{}, nil, logging.Default())

	svc.Dispatch(context.Background(), testOutcome())

	assert.Len(t, sender.sent, 1)
}

func TestDispatchSendFailureStillAudited(t *testing.T) {
	dir := &stubDirectory{
		settings: &clinic.Settings{EvolutionInstance: "inst", EvolutionAPIKey: "key"},
		profErr:  clinic.ErrProfessionalNotFound,
	}
	sender := &stubSender{err: errors.New("gateway down")}
	audit := &stubAudit{}
	svc := NewService(dir, sender, audit, nil, logging.Default())

	svc.Dispatch(context.Background(), testOutcome())

	assert.Len(t, sender.sent, 1)
	assert.Len(t, audit.entries, 1)
	assert.Equal(t, messagelog.StatusFailed, audit.entries[0].Status)
	assert.Empty(t, audit.entries[0].ExternalMessageID)
}

func TestDispatchFallsBackToStoredPhone(t *testing.T) {
	dir := &stubDirectory{
		settings: &clinic.Settings{EvolutionInstance: "inst", EvolutionAPIKey: "key"},
		profErr:  clinic.ErrProfessionalNotFound,
	}
	sender := &stubSender{}
	svc := NewService(dir, sender, &stubAudit{}, nil, logging.Default())

	outcome := testOutcome()
	outcome.SenderDigits = ""
	svc.Dispatch(context.Background(), outcome)

	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "6699516222", sender.sent[0].number)
}
