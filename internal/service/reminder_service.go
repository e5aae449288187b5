package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
)

type ReminderService interface {
	// SendReminders dispatches reminder mails when the event starts within the lead
	// window. It returns the number of registrations reminded.
	SendReminders(ctx context.Context) (int, error)
}

type reminderService struct {
	store    repository.Store
	settings SettingsService
	notifier NotificationService
	lead     time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminderService(
	store repository.Store,
	settings SettingsService,
	notifier NotificationService,
	lead time.Duration,
	logger *zap.Logger,
) ReminderService {
	if lead <= 0 {
		lead = 24 * time.Hour
	}
	return &reminderService{
		store:    store,
		settings: settings,
		notifier: notifier,
		lead:     lead,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *reminderService) SendReminders(ctx context.Context) (int, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	start, err := eventStart(settings)
	if err != nil {
		s.logger.Debug("event date not set, skipping reminders", zap.String("event_date", settings.EventDate))
		return 0, nil
	}
	now := s.now()
	if now.After(start) || start.Sub(now) > s.lead {
		return 0, nil
	}

	regs, err := s.store.Repositories().Registrations.ListApprovedWithoutSentMessage(ctx, model.MessageTypeReminder)
	if err != nil {
		return 0, dbError(err)
	}
	for _, reg := range regs {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.notifier.Dispatch(ctx, Notification{Type: model.MessageTypeReminder, RegistrationID: reg.ID})
	}
	if len(regs) > 0 {
		s.logger.Info("event reminders dispatched", zap.Int("count", len(regs)), zap.Time("event_start", start))
	}
	return len(regs), nil
}

var _ ReminderService = (*reminderService)(nil)
