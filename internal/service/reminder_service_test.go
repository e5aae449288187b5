package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventtix/registrar/internal/model"
)

func TestReminderService_SendReminders(t *testing.T) {
	f := newFixture(t)
	f.allowScreenshots()
	f.allowQRCodes()
	ctx := context.Background()

	approved := f.submitIndividual(t, "Alice", "alice@example.com")
	f.submitIndividual(t, "Bob", "bob@example.com")
	_, err := f.review.Approve(ctx, approved.ID, reviewer)
	require.NoError(t, err)

	reminders := &recordingNotifier{}
	svc := NewReminderService(f.store, f.settings, reminders, 48*time.Hour, zap.NewNop()).(*reminderService)
	// The event starts 2025-11-20 09:30 UTC.
	eventStart := time.Date(2025, 11, 20, 9, 30, 0, 0, time.UTC)

	t.Run("TooEarly", func(t *testing.T) {
		svc.now = func() time.Time { return eventStart.Add(-72 * time.Hour) }
		n, err := svc.SendReminders(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("InsideWindow", func(t *testing.T) {
		svc.now = func() time.Time { return eventStart.Add(-24 * time.Hour) }
		n, err := svc.SendReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Len(t, reminders.sent, 1)
		assert.Equal(t, Notification{Type: model.MessageTypeReminder, RegistrationID: approved.ID}, reminders.sent[0])
	})

	t.Run("SkipsAlreadyReminded", func(t *testing.T) {
		require.NoError(t, f.store.Repositories().Messages.Create(ctx, &model.Message{
			RegistrationID: approved.ID,
			MessageType:    model.MessageTypeReminder,
			Subject:        "Reminder",
			RecipientEmail: "alice@example.com",
			Sent:           true,
		}))
		svc.now = func() time.Time { return eventStart.Add(-12 * time.Hour) }
		n, err := svc.SendReminders(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("AfterStart", func(t *testing.T) {
		svc.now = func() time.Time { return eventStart.Add(time.Hour) }
		n, err := svc.SendReminders(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
