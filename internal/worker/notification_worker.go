package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/service"
)

// Drainer waits for in-flight dispatches.
type Drainer interface {
	Wait(ctx context.Context) error
}

// NotificationWorker subscribes notification handlers and drains pending
// deliveries on shutdown.
type NotificationWorker struct {
	notifications *service.NotificationService
	drainer       Drainer
	logger        *zap.Logger
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notifications *service.NotificationService, drainer Drainer, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{notifications: notifications, drainer: drainer, logger: logger}
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	return w
}

// Stop waits up to timeout for queued notifications to finish.
func (w *NotificationWorker) Stop(timeout time.Duration) {
	if w == nil || w.drainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := w.drainer.Wait(ctx); err != nil {
		w.logger.Warn("notifications still in flight at shutdown", zap.Error(err))
		return
	}
	w.logger.Info("notification worker drained")
}
