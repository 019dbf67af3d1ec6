package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

const protocolReminderWindowDays = 31

type protocolLister interface {
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Diagnosis, error)
}

type reminderNotifier interface {
	Notify(ctx context.Context, profileID uuid.UUID, kind enums.NotificationType, title, message string) error
}

// ProtocolReminderJobParams configure the daily protocol reminder job.
type ProtocolReminderJobParams struct {
	Logger    *logger.Logger
	Diagnoses protocolLister
	Notifier  reminderNotifier
}

// NewProtocolReminderJob builds the job that notifies profiles about their
// pending protocol day. Only the newest diagnosis per profile counts; a day
// already marked complete produces no reminder.
func NewProtocolReminderJob(params ProtocolReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Diagnoses == nil {
		return nil, fmt.Errorf("diagnosis repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &protocolReminderJob{
		logg:      params.Logger,
		diagnoses: params.Diagnoses,
		notifier:  params.Notifier,
		now:       time.Now,
	}, nil
}

type protocolReminderJob struct {
	logg      *logger.Logger
	diagnoses protocolLister
	notifier  reminderNotifier
	now       func() time.Time
}

func (j *protocolReminderJob) Name() string { return "protocol-reminder" }

func (j *protocolReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	since := now.Add(-protocolReminderWindowDays * 24 * time.Hour)
	diagnoses, err := j.diagnoses.ListCreatedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list active protocols: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(diagnoses))
	var sent int
	for _, diagnosis := range diagnoses {
		// Rows arrive newest first, so the first hit per profile is the
		// active diagnosis.
		if _, ok := seen[diagnosis.ProfileID]; ok {
			continue
		}
		seen[diagnosis.ProfileID] = struct{}{}

		dayNumber := int(now.Sub(diagnosis.CreatedAt).Hours()/24) + 1
		if dayNumber < 1 || dayNumber > len(diagnosis.Protocol) {
			continue
		}
		day := diagnosis.Protocol[dayNumber-1]
		if day.Completed {
			continue
		}

		title := "Seu protocolo de hoje"
		message := fmt.Sprintf("Dia %d do seu protocolo capilar: %s", dayNumber, day.Instruction)
		if err := j.notifier.Notify(ctx, diagnosis.ProfileID, enums.NotificationReminder, title, message); err != nil {
			failCtx := j.logg.WithField(ctx, "profile_id", diagnosis.ProfileID.String())
			j.logg.Error(failCtx, "failed to queue protocol reminder", err)
			continue
		}
		sent++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"profiles_seen":  len(seen),
		"reminders_sent": sent,
	})
	j.logg.Info(logCtx, "protocol reminders dispatched")
	return nil
}
