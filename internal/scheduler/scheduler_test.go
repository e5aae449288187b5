package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"eventtix/registrar/internal/config"
)

type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) SendReminders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestNewScheduler(t *testing.T) {
	t.Run("DefaultSpec", func(t *testing.T) {
		s, err := NewScheduler(config.SchedulerConfig{}, new(MockReminderService), zap.NewNop())
		require.NoError(t, err)
		assert.Len(t, s.cron.Entries(), 1)
	})

	t.Run("InvalidSpec", func(t *testing.T) {
		_, err := NewScheduler(config.SchedulerConfig{ReminderSpec: "every tuesday"}, new(MockReminderService), zap.NewNop())
		assert.Error(t, err)
	})
}

func TestScheduler_SendReminders(t *testing.T) {
	reminders := new(MockReminderService)
	reminders.On("SendReminders", mock.Anything).Return(3, nil).Once()

	s, err := NewScheduler(config.SchedulerConfig{ReminderSpec: "0 */5 * * * *"}, reminders, zap.NewNop())
	require.NoError(t, err)

	s.runWithRecovery("send_reminders", s.sendReminders)()
	reminders.AssertExpectations(t)
}

func TestScheduler_RunWithRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s, err := NewScheduler(config.SchedulerConfig{}, new(MockReminderService), zap.New(core))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.runWithRecovery("boom", func(context.Context) error { panic("kaboom") })()
	})
	s.runWithRecovery("fails", func(context.Context) error { return errors.New("db down") })()

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "scheduled job panicked", logs.All()[0].Message)
	assert.Equal(t, "scheduled job failed", logs.All()[1].Message)
}
