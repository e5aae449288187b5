// Package worker runs background consumers.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"eventtix/registrar/internal/queue"
	"eventtix/registrar/internal/service"
)

// Consumer blocks delivering messages until ctx is done or the subscription fails.
type Consumer interface {
	Consume(ctx context.Context, handler queue.Handler) error
}

// NotificationWorker delivers queued notification jobs. Every job is attempted once.
type NotificationWorker struct {
	consumer      Consumer
	notifications service.NotificationService
	logger        *zap.Logger
	retryDelay    time.Duration

	done   chan struct{}
	cancel context.CancelFunc
}

func NewNotificationWorker(consumer Consumer, notifications service.NotificationService, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		consumer:      consumer,
		notifications: notifications,
		logger:        logger,
		retryDelay:    5 * time.Second,
		done:          make(chan struct{}),
	}
}

func (w *NotificationWorker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.logger.Info("notification worker started")

	go func() {
		defer close(w.done)
		for {
			err := w.consumer.Consume(cctx, w.handle)
			if cctx.Err() != nil {
				w.logger.Info("notification worker stopped")
				return
			}
			w.logger.Error("notification consumer failed, resubscribing", zap.Error(err), zap.Duration("delay", w.retryDelay))
			select {
			case <-cctx.Done():
				return
			case <-time.After(w.retryDelay):
			}
		}
	}()
}

func (w *NotificationWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *NotificationWorker) handle(ctx context.Context, body []byte) error {
	var n service.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		w.logger.Error("malformed notification dropped", zap.ByteString("body", body), zap.Error(err))
		return nil
	}
	if n.RegistrationID == 0 || n.Type == "" {
		w.logger.Error("incomplete notification dropped", zap.ByteString("body", body))
		return nil
	}

	w.logger.Debug("notification received",
		zap.String("type", string(n.Type)),
		zap.Uint("registration_id", n.RegistrationID),
	)
	if err := w.notifications.Deliver(ctx, n); err != nil {
		return fmt.Errorf("deliver %s for registration %d: %w", n.Type, n.RegistrationID, err)
	}
	return nil
}
