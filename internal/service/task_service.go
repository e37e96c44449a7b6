package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/events"
	"github.com/spec-kit/onboarding-service/internal/repository"
	apperrors "github.com/spec-kit/onboarding-service/pkg/util"
)

var (
	// ErrTasksGated means the submission has no manager and team selected yet.
	ErrTasksGated = errors.New("select a team and manager before reviewing tasks")
	// ErrUnknownTask means a task id is not among the submission's active tasks.
	ErrUnknownTask = errors.New("task is not available for this submission")
	// ErrNotTaskOwner means a manager acted on another manager's task.
	ErrNotTaskOwner = errors.New("task belongs to another manager")
)

// TaskView is one task as seen by an applicant.
type TaskView struct {
	domain.Task
	Assigned       bool       `json:"assigned"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// CreateTaskInput describes a new manager task.
type CreateTaskInput struct {
	TeamID      string
	Title       string
	Description string
}

// TaskService coordinates manager tasks and applicant acknowledgments.
type TaskService struct {
	tasks       repository.TaskRepository
	assignments repository.TaskAssignmentRepository
	submissions repository.SubmissionRepository
	managers    repository.ManagerRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TaskDependencies bundles repositories for the task service.
type TaskDependencies struct {
	TaskRepo       repository.TaskRepository
	AssignmentRepo repository.TaskAssignmentRepository
	SubmissionRepo repository.SubmissionRepository
	ManagerRepo    repository.ManagerRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewTaskService builds the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:       deps.TaskRepo,
		assignments: deps.AssignmentRepo,
		submissions: deps.SubmissionRepo,
		managers:    deps.ManagerRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         time.Now,
	}
}

// ListAssignedTasks returns the active tasks for a manager and team. An
// empty list is a normal result.
func (s *TaskService) ListAssignedTasks(ctx context.Context, managerID, teamID string) ([]domain.Task, error) {
	return s.tasks.ListActiveByManagerTeam(ctx, managerID, teamID)
}

// TasksForSubmission lists the tasks scoped to the submission's manager and
// team, marked with any assignment or acknowledgment already recorded.
func (s *TaskService) TasksForSubmission(ctx context.Context, submissionID string) ([]TaskView, error) {
	sub, err := s.gatedSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.ListAssignedTasks(ctx, sub.ManagerID(), sub.TeamID())
	if err != nil {
		return nil, err
	}
	recorded, err := s.assignments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	byTask := make(map[string]domain.TaskAssignment, len(recorded))
	for _, a := range recorded {
		byTask[a.TaskID] = a
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := TaskView{Task: t}
		if a, ok := byTask[t.ID]; ok {
			view.Assigned = true
			view.AcknowledgedAt = a.AcknowledgedAt
		}
		views = append(views, view)
	}
	return views, nil
}

// Acknowledge records an acknowledgment for each task id. Tasks already
// acknowledged are skipped before the scope check, so they stay no-ops even
// after the submission's manager or team changes.
func (s *TaskService) Acknowledge(ctx context.Context, submissionID string, taskIDs []string) error {
	ids := dedupe(taskIDs)
	if len(ids) == 0 {
		return nil
	}
	ids, err := s.unacknowledged(ctx, submissionID, ids)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.checkAvailable(ctx, submissionID, ids); err != nil {
		return err
	}
	at := s.now().UTC()
	for _, id := range ids {
		if err := s.assignments.Acknowledge(ctx, id, submissionID, at); err != nil {
			return fmt.Errorf("acknowledge task %s: %w", id, err)
		}
	}
	return nil
}

// ValidateSelection checks that every id is an active task for the submission
// and returns the ids deduplicated in a stable order.
func (s *TaskService) ValidateSelection(ctx context.Context, submissionID string, taskIDs []string) ([]string, error) {
	ids := dedupe(taskIDs)
	if len(ids) == 0 {
		return ids, nil
	}
	if err := s.checkAvailable(ctx, submissionID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *TaskService) unacknowledged(ctx context.Context, submissionID string, ids []string) ([]string, error) {
	if submissionID == "" {
		return nil, ErrTasksGated
	}
	recorded, err := s.assignments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]struct{}, len(recorded))
	for _, a := range recorded {
		if a.Acknowledged() {
			done[a.TaskID] = struct{}{}
		}
	}
	out := ids[:0]
	for _, id := range ids {
		if _, ok := done[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *TaskService) checkAvailable(ctx context.Context, submissionID string, ids []string) error {
	sub, err := s.gatedSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	tasks, err := s.ListAssignedTasks(ctx, sub.ManagerID(), sub.TeamID())
	if err != nil {
		return err
	}
	active := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		active[t.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := active[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTask, id)
		}
	}
	return nil
}

func (s *TaskService) gatedSubmission(ctx context.Context, submissionID string) (*domain.OnboardingSubmission, error) {
	if submissionID == "" {
		return nil, ErrTasksGated
	}
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.ManagerID() == "" || sub.TeamID() == "" {
		return nil, ErrTasksGated
	}
	return sub, nil
}

// CreateTask adds an active task owned by the manager. The team defaults to
// the manager's own team.
func (s *TaskService) CreateTask(ctx context.Context, managerID string, input CreateTaskInput) (*domain.Task, error) {
	manager, err := s.managers.GetByID(ctx, managerID)
	if err != nil {
		return nil, err
	}
	teamID := strings.TrimSpace(input.TeamID)
	if teamID == "" && manager.TeamID != nil {
		teamID = *manager.TeamID
	}
	if teamID == "" {
		return nil, apperrors.NewValidationError("team is required", map[string]any{"field": "team_id"})
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}

	task := &domain.Task{
		ManagerID:   managerID,
		TeamID:      teamID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// AssignTask links a task to submissions and notifies each newly assigned
// applicant. It returns the submission ids that were newly assigned.
func (s *TaskService) AssignTask(ctx context.Context, managerID, taskID string, submissionIDs []string) ([]string, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.ManagerID != managerID {
		return nil, ErrNotTaskOwner
	}
	manager, err := s.managers.GetByID(ctx, managerID)
	if err != nil {
		return nil, err
	}

	var assigned []string
	for _, subID := range dedupe(submissionIDs) {
		sub, err := s.submissions.GetByID(ctx, subID)
		if err != nil {
			return assigned, fmt.Errorf("submission %s: %w", subID, err)
		}
		created, err := s.assignments.Assign(ctx, task.ID, subID)
		if err != nil {
			return assigned, fmt.Errorf("assign task to %s: %w", subID, err)
		}
		if !created {
			continue
		}
		assigned = append(assigned, subID)
		s.publishAssignment(ctx, task, manager, sub)
	}
	return assigned, nil
}

func (s *TaskService) publishAssignment(ctx context.Context, task *domain.Task, manager *domain.Manager, sub *domain.OnboardingSubmission) {
	if s.dispatcher == nil {
		return
	}
	managerID := manager.ID
	name := strings.TrimSpace(sub.Text(domain.ColumnFirstName) + " " + sub.Text(domain.ColumnLastName))
	err := s.dispatcher.Publish(ctx, events.Event{
		Type:         events.EventTaskAssignment,
		SubmissionID: sub.ID,
		Actor:        events.Actor{Type: domain.SubjectTypeManager, ManagerID: &managerID},
		Payload: events.TaskAssignmentPayload{
			TaskID:         task.ID,
			Title:          task.Title,
			Description:    task.Description,
			ManagerName:    manager.Name,
			ApplicantName:  name,
			RecipientEmail: sub.Text(domain.ColumnPersonalEmail),
		},
	})
	if err != nil {
		s.logger.Warn("publish task assignment", zap.String("task_id", task.ID), zap.Error(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
