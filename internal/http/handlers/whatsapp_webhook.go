package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fisiogestor/whatsapp-confirm/internal/appointments"
	"github.com/fisiogestor/whatsapp-confirm/internal/evolution"
	"github.com/fisiogestor/whatsapp-confirm/internal/intent"
	"github.com/fisiogestor/whatsapp-confirm/internal/messagelog"
	"github.com/fisiogestor/whatsapp-confirm/internal/notify"
	observemetrics "github.com/fisiogestor/whatsapp-confirm/internal/observability/metrics"
	"github.com/fisiogestor/whatsapp-confirm/internal/phone"
	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

// Matcher resolves phone variants to a patient and their nearest pending
// appointment.
type Matcher interface {
	Match(ctx context.Context, variants []string, now time.Time) (*appointments.Match, error)
}

// AppointmentResolver applies the final status to one appointment row.
type AppointmentResolver interface {
	Resolve(ctx context.Context, id uuid.UUID, status appointments.Status, respondedAt time.Time) error
}

// AuditLog appends message audit rows.
type AuditLog interface {
	Append(ctx context.Context, entry messagelog.Entry) error
}

// Notifier fans out best-effort feedback after a successful status change.
type Notifier interface {
	Dispatch(ctx context.Context, outcome notify.Outcome)
}

// WhatsAppWebhookHandler processes inbound gateway events: it filters out
// non-user messages, classifies the reply, matches the sender to a pending
// appointment and persists the resolution before any notification runs.
type WhatsAppWebhookHandler struct {
	classifier *intent.Classifier
	matcher    Matcher
	resolver   AppointmentResolver
	audit      AuditLog
	notifier   Notifier
	logger     *logging.Logger
	metrics    *observemetrics.ConfirmationMetrics
	loc        *time.Location
	now        func() time.Time
}

type WhatsAppWebhookConfig struct {
	Classifier *intent.Classifier
	Matcher    Matcher
	Resolver   AppointmentResolver
	Audit      AuditLog
	Notifier   Notifier
	Logger     *logging.Logger
	Metrics    *observemetrics.ConfirmationMetrics
	Location   *time.Location
	Now        func() time.Time
}

func NewWhatsAppWebhookHandler(cfg WhatsAppWebhookConfig) *WhatsAppWebhookHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &WhatsAppWebhookHandler{
		classifier: cfg.Classifier,
		matcher:    cfg.Matcher,
		resolver:   cfg.Resolver,
		audit:      cfg.Audit,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		loc:        cfg.Location,
		now:        cfg.Now,
	}
}

// Outcome labels used on metrics.
const (
	outcomeIgnored         = "ignored"
	outcomeNoText          = "no_text"
	outcomeUnrecognized    = "unrecognized"
	outcomePatientNotFound = "patient_not_found"
	outcomeNoPending       = "no_pending"
	outcomeError           = "error"
)

// Handle processes one webhook delivery. Each invocation is independent; the
// only persisted mutation is the appointment status plus audit rows.
func (h *WhatsAppWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	outcome := outcomeError
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook handler panicked", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, errorResponse(msgInternalError))
		}
		h.metrics.ObserveInbound(outcome)
		h.metrics.ObserveWebhookLatency(outcome, h.now().Sub(start).Seconds())
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse("Corpo da requisição inválido."))
		return
	}
	evt, err := evolution.ParseWebhook(body)
	if err != nil {
		h.logger.Warn("webhook payload not parseable", "error", err)
		writeJSON(w, http.StatusBadRequest, failureResponse("Payload inválido."))
		return
	}

	filtered := evolution.Filter(evt)
	if !filtered.Proceed {
		switch filtered.Reason {
		case evolution.ReasonEmptyText:
			outcome = outcomeNoText
			writeJSON(w, http.StatusOK, successResponse(msgNoText))
		default:
			outcome = outcomeIgnored
			writeJSON(w, http.StatusOK, successResponse(msgEventIgnored))
		}
		return
	}

	senderJID := evt.Data.Key.RemoteJID
	senderDigits := phone.Digits(senderJID)
	replyIntent := h.classifier.Classify(filtered.Text)
	h.metrics.ObserveIntent(string(replyIntent))

	if replyIntent == intent.IntentUnrecognized {
		// Expected outcome for unconstrained free text, not an error.
		h.logger.Info("reply not classifiable",
			"sender", senderDigits,
			"message_id", evt.Data.Key.ID,
		)
		h.appendAudit(r.Context(), messagelog.Entry{
			PatientPhone:      senderDigits,
			MessageType:       messagelog.TypeInboundReply,
			Content:           filtered.Text,
			Status:            messagelog.StatusReceived,
			ExternalMessageID: evt.Data.Key.ID,
		})
		outcome = outcomeUnrecognized
		writeJSON(w, http.StatusOK, successResponse(msgNotProcessable))
		return
	}

	variants := phone.Variants(senderJID)
	now := h.now().In(h.loc)
	match, err := h.matcher.Match(r.Context(), variants, now)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrPatientNotFound):
			outcome = outcomePatientNotFound
			writeJSON(w, http.StatusNotFound, failureResponse(msgPatientNotFound))
		case errors.Is(err, appointments.ErrNoPendingAppointment):
			outcome = outcomeNoPending
			writeJSON(w, http.StatusNotFound, failureResponse(msgNoPendingAppointment))
		default:
			h.logger.Error("matcher failed", "error", err, "sender", senderDigits)
			writeJSON(w, http.StatusInternalServerError, errorResponse(msgInternalError))
		}
		return
	}

	status := appointments.StatusConfirmed
	if replyIntent == intent.IntentCancel {
		status = appointments.StatusCancelled
	}

	// Authoritative write. Failure is fatal for the request: no notification
	// may be sent about an update that did not happen.
	if err := h.resolver.Resolve(r.Context(), match.Appointment.ID, status, now); err != nil {
		h.logger.Error("appointment update failed",
			"appointment_id", match.Appointment.ID,
			"status", status,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse(msgInternalError))
		return
	}

	apptID := match.Appointment.ID
	clinicID := match.Appointment.ClinicID
	h.appendAudit(r.Context(), messagelog.Entry{
		AppointmentID:     &apptID,
		ClinicID:          &clinicID,
		PatientPhone:      senderDigits,
		MessageType:       messagelog.TypeInboundReply,
		Content:           filtered.Text,
		Status:            messagelog.StatusReceived,
		ExternalMessageID: evt.Data.Key.ID,
	})

	startsAt, err := match.Appointment.StartsAt(h.loc)
	if err != nil {
		startsAt = now
	}
	if h.notifier != nil {
		h.notifier.Dispatch(r.Context(), notify.Outcome{
			Appointment:  match.Appointment,
			Patient:      match.Patient,
			Confirmed:    status == appointments.StatusConfirmed,
			StartsAt:     startsAt,
			SenderDigits: senderDigits,
		})
	}

	h.logger.Info("appointment resolved",
		"appointment_id", match.Appointment.ID,
		"patient_id", match.Patient.ID,
		"clinic_id", match.Appointment.ClinicID,
		"status", status,
	)
	outcome = string(status)
	writeJSON(w, http.StatusOK, successResponse(msgResolved(status)))
}

// appendAudit records the entry without letting a failure escape; the audit
// trail is best-effort by contract.
func (h *WhatsAppWebhookHandler) appendAudit(ctx context.Context, entry messagelog.Entry) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Append(ctx, entry); err != nil {
		h.logger.Warn("audit append failed", "type", entry.MessageType, "error", err)
	}
}

// HealthCheck reports liveness.
func (h *WhatsAppWebhookHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
