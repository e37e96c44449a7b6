package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/observability"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// DispatchError wraps a handler failure. It is logged and counted, never
// returned to the publisher.
type DispatchError struct {
	Event        EventType
	SubmissionID string
	Err          error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s for submission %s: %v", e.Event, e.SubmissionID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// AsyncDispatcher runs handlers on their own goroutine with a bounded
// timeout. Publish never blocks on, or fails because of, a handler.
type AsyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
	inflight  sync.WaitGroup
	now       func() time.Time
}

// NewAsyncDispatcher creates a dispatcher instance.
func NewAsyncDispatcher(logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) *AsyncDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Publish stamps the event and hands it to the subscribed handlers in the
// background. The returned error is always nil.
func (d *AsyncDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()
	if len(handlers) == 0 {
		return nil
	}

	base := context.WithoutCancel(ctx)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		for _, handler := range handlers {
			d.run(base, handler, event)
		}
	}()
	return nil
}

func (d *AsyncDispatcher) run(base context.Context, handler EventHandler, event Event) {
	ctx := base
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, d.timeout)
		defer cancel()
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return handler(ctx, event)
	}()
	if err == nil {
		d.metrics.RecordNotification(string(event.Type), "ok")
		return
	}

	dispatchErr := &DispatchError{Event: event.Type, SubmissionID: event.SubmissionID, Err: err}
	d.metrics.RecordNotification(string(event.Type), "failed")
	d.logger.Warn("notification dispatch failed",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("submission_id", event.SubmissionID),
		zap.Error(dispatchErr))
}

// Subscribe registers a handler for the given event type.
func (d *AsyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Wait blocks until every published event has been handled or ctx ends.
func (d *AsyncDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
