package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"eventtix/registrar/internal/config"
	"eventtix/registrar/internal/service"
)

const defaultReminderSpec = "0 0 * * * *"

// Scheduler runs periodic jobs on a UTC cron with seconds precision.
type Scheduler struct {
	cron       *cron.Cron
	reminders  service.ReminderService
	jobTimeout time.Duration
	logger     *zap.Logger
}

func NewScheduler(cfg config.SchedulerConfig, reminders service.ReminderService, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)
	s := &Scheduler{
		cron:       c,
		reminders:  reminders,
		jobTimeout: 10 * time.Minute,
		logger:     logger,
	}

	spec := cfg.ReminderSpec
	if spec == "" {
		spec = defaultReminderSpec
	}
	if _, err := s.cron.AddFunc(spec, s.runWithRecovery("send_reminders", s.sendReminders)); err != nil {
		return nil, fmt.Errorf("register send_reminders job %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) sendReminders(ctx context.Context) error {
	n, err := s.reminders.SendReminders(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("reminder job finished", zap.Int("dispatched", n))
	return nil
}

// runWithRecovery wraps a job so a panic or error is logged instead of killing the cron goroutine.
func (s *Scheduler) runWithRecovery(name string, job func(ctx context.Context) error) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		started := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Debug("scheduled job completed", zap.String("job", name), zap.Duration("took", time.Since(started)))
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting cron scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("cron scheduler stopped")
}
