// Package reminder sends next-day confirmation requests for appointments
// still in scheduled status. A Redis SETNX key per appointment keeps
// concurrent worker replicas from double-sending.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fisiogestor/whatsapp-confirm/internal/appointments"
	"github.com/fisiogestor/whatsapp-confirm/internal/clinic"
	"github.com/fisiogestor/whatsapp-confirm/internal/evolution"
	"github.com/fisiogestor/whatsapp-confirm/internal/messagelog"
	"github.com/fisiogestor/whatsapp-confirm/internal/observability/metrics"
	"github.com/fisiogestor/whatsapp-confirm/pkg/logging"
)

// AppointmentSource lists appointments eligible for a reminder.
type AppointmentSource interface {
	ListForReminder(ctx context.Context, day time.Time) ([]appointments.ReminderCandidate, error)
}

// CredentialSource resolves per-clinic messaging credentials.
type CredentialSource interface {
	GetSettings(ctx context.Context, clinicID uuid.UUID) (*clinic.Settings, error)
}

// TextSender posts one outbound WhatsApp message.
type TextSender interface {
	SendText(ctx context.Context, instance, apiKey, number, text string) (string, error)
}

// AuditLog records send attempts.
type AuditLog interface {
	Append(ctx context.Context, entry messagelog.Entry) error
}

// Dispatcher scans for next-day scheduled appointments and asks each patient
// to confirm.
type Dispatcher struct {
	source    AppointmentSource
	creds     CredentialSource
	sender    TextSender
	audit     AuditLog
	redis     *redis.Client
	metrics   *metrics.ConfirmationMetrics
	logger    *logging.Logger
	loc       *time.Location
	interval  time.Duration
	dedupeTTL time.Duration
	now       func() time.Time
}

type Config struct {
	Source    AppointmentSource
	Creds     CredentialSource
	Sender    TextSender
	Audit     AuditLog
	Redis     *redis.Client
	Metrics   *metrics.ConfirmationMetrics
	Logger    *logging.Logger
	Location  *time.Location
	Interval  time.Duration
	DedupeTTL time.Duration
	Now       func() time.Time
}

func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = 48 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dispatcher{
		source:    cfg.Source,
		creds:     cfg.Creds,
		sender:    cfg.Sender,
		audit:     cfg.Audit,
		redis:     cfg.Redis,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		loc:       cfg.Location,
		interval:  cfg.Interval,
		dedupeTTL: cfg.DedupeTTL,
		now:       cfg.Now,
	}
}

// Run loops until the context is cancelled, dispatching one pass per interval.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	d.logger.Info("reminder dispatcher started", "interval", d.interval)
	for {
		if err := d.RunOnce(ctx); err != nil {
			d.logger.Error("reminder pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce dispatches reminders for tomorrow's scheduled appointments. Send
// failures release the dedupe key so a later pass retries them.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	now := d.now().In(d.loc)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.loc).AddDate(0, 0, 1)

	candidates, err := d.source.ListForReminder(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("reminder: list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	settingsByClinic := make(map[uuid.UUID]*clinic.Settings)
	for _, c := range candidates {
		settings, ok := settingsByClinic[c.ClinicID]
		if !ok {
			settings, err = d.creds.GetSettings(ctx, c.ClinicID)
			if err != nil && !errors.Is(err, clinic.ErrSettingsNotFound) {
				d.logger.Error("reminder: settings lookup failed", "clinic_id", c.ClinicID, "error", err)
			}
			settingsByClinic[c.ClinicID] = settings
		}
		if !settings.Configured() {
			d.metrics.ObserveReminder("skipped_no_credentials")
			continue
		}
		if c.PatientPhone == "" {
			d.metrics.ObserveReminder("skipped_no_phone")
			continue
		}
		d.dispatchOne(ctx, settings, c, tomorrow)
	}
	return nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, settings *clinic.Settings, c appointments.ReminderCandidate, day time.Time) {
	key := fmt.Sprintf("reminder:%s:%s", c.ID, day.Format("2006-01-02"))
	if d.redis != nil {
		ok, err := d.redis.SetNX(ctx, key, 1, d.dedupeTTL).Result()
		if err != nil {
			d.logger.Error("reminder: dedupe check failed", "appointment_id", c.ID, "error", err)
			return
		}
		if !ok {
			d.metrics.ObserveReminder("deduplicated")
			return
		}
	}

	startsAt, err := c.StartsAt(d.loc)
	if err != nil {
		d.logger.Warn("reminder: unparsable appointment time", "appointment_id", c.ID, "error", err)
		return
	}
	text := evolution.ConfirmationRequest(c.PatientName, startsAt)
	msgID, err := d.sender.SendText(ctx, settings.EvolutionInstance, settings.EvolutionAPIKey, c.PatientPhone, text)
	status := messagelog.StatusSent
	if err != nil {
		status = messagelog.StatusFailed
		d.logger.Warn("reminder: send failed", "appointment_id", c.ID, "error", err)
		if d.redis != nil {
			if delErr := d.redis.Del(ctx, key).Err(); delErr != nil {
				d.logger.Warn("reminder: dedupe release failed", "appointment_id", c.ID, "error", delErr)
			}
		}
	}
	d.metrics.ObserveReminder(status)

	if d.audit != nil {
		apptID := c.ID
		clinicID := c.ClinicID
		entry := messagelog.Entry{
			AppointmentID:     &apptID,
			ClinicID:          &clinicID,
			PatientPhone:      c.PatientPhone,
			MessageType:       messagelog.TypeConfirmationRequest,
			Content:           text,
			Status:            status,
			ExternalMessageID: msgID,
		}
		if err := d.audit.Append(ctx, entry); err != nil {
			d.logger.Warn("reminder: audit append failed", "appointment_id", c.ID, "error", err)
		}
	}
}
