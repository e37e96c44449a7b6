package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/onboarding-service/internal/config"
	"github.com/spec-kit/onboarding-service/internal/events"
	"github.com/spec-kit/onboarding-service/internal/notify"
)

// NotificationService renders milestone events and fans them out to every
// configured sender.
type NotificationService struct {
	dispatcher events.Dispatcher
	renderer   *notify.Renderer
	senders    []notify.Sender
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, renderer *notify.Renderer, senders []notify.Sender, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		renderer:   renderer,
		senders:    senders,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOnboardingStarted, n.handleOnboardingStarted)
	n.dispatcher.Subscribe(events.EventOnboardingCompleted, n.handleOnboardingCompleted)
	n.dispatcher.Subscribe(events.EventTaskAssignment, n.handleTaskAssignment)
}

func (n *NotificationService) handleOnboardingStarted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OnboardingStartedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("OnboardingStarted", zap.String("submission_id", event.SubmissionID))

	body, err := n.renderer.Render("onboarding_started", map[string]any{
		"SubmissionID":   event.SubmissionID,
		"FirstName":      payload.FirstName,
		"LastName":       payload.LastName,
		"PersonalEmail":  payload.PersonalEmail,
		"GeneratedEmail": deref(payload.GeneratedEmail),
	})
	if err != nil {
		return err
	}
	return n.deliver(ctx, notify.Message{
		Event:    string(event.Type),
		Key:      event.SubmissionID,
		To:       recipients(n.cfg.AdminRecipient),
		Subject:  fmt.Sprintf("New onboarding started: %s %s", payload.FirstName, payload.LastName),
		HTMLBody: body,
	})
}

func (n *NotificationService) handleOnboardingCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OnboardingCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("OnboardingCompleted",
		zap.String("submission_id", event.SubmissionID),
		zap.Bool("manager_resolved", payload.ManagerEmail != ""))

	first := fieldString(payload.Fields["first_name"])
	last := fieldString(payload.Fields["last_name"])
	body, err := n.renderer.Render("onboarding_completed", map[string]any{
		"FirstName":      first,
		"LastName":       last,
		"ManagerName":    payload.ManagerName,
		"GeneratedEmail": deref(payload.GeneratedEmail),
		"Rows":           summaryRows(payload.Fields),
	})
	if err != nil {
		return err
	}
	return n.deliver(ctx, notify.Message{
		Event:    string(event.Type),
		Key:      event.SubmissionID,
		To:       recipients(payload.ManagerEmail, n.cfg.AdminRecipient),
		Subject:  fmt.Sprintf("Onboarding submitted: %s %s", first, last),
		HTMLBody: body,
	})
}

func (n *NotificationService) handleTaskAssignment(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskAssignmentPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("TaskAssignment", zap.String("submission_id", event.SubmissionID), zap.String("task_id", payload.TaskID))

	body, err := n.renderer.Render("task_assignment", payload)
	if err != nil {
		return err
	}
	return n.deliver(ctx, notify.Message{
		Event:    string(event.Type),
		Key:      event.SubmissionID,
		To:       recipients(payload.RecipientEmail),
		Subject:  "New onboarding task: " + payload.Title,
		HTMLBody: body,
	})
}

// deliver sends msg through every sender concurrently. One sender failing
// does not cancel the others; the first failure is returned.
func (n *NotificationService) deliver(ctx context.Context, msg notify.Message) error {
	if len(n.senders) == 0 {
		n.logger.Debug("no notification senders configured", zap.String("event_type", msg.Event))
		return nil
	}
	var g errgroup.Group
	for _, sender := range n.senders {
		sender := sender
		g.Go(func() error {
			if err := sender.Send(ctx, msg); err != nil {
				return fmt.Errorf("%s: %w", sender.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func recipients(addrs ...string) []string {
	var out []string
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func summaryRows(fields map[string]any) []map[string]any {
	cols := make([]string, 0, len(fields))
	for col, v := range fields {
		if v == nil {
			continue
		}
		switch col {
		case "account_number", "routing_number":
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	rows := make([]map[string]any, 0, len(cols))
	for _, col := range cols {
		rows = append(rows, map[string]any{"Column": col, "Value": fields[col]})
	}
	return rows
}

func fieldString(v any) string {
	s, _ := v.(string)
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
