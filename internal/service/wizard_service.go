package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/session"
)

// Session pairs a session id with the sequencer state it holds.
type Session struct {
	ID    string              `json:"id"`
	State *domain.WizardState `json:"state"`
}

// WizardService runs the sequencer over stored sessions.
type WizardService struct {
	sequencer *Sequencer
	sessions  session.Store
	tasks     *TaskService
	ttl       time.Duration
}

// NewWizardService builds the service.
func NewWizardService(sequencer *Sequencer, sessions session.Store, tasks *TaskService, ttl time.Duration) *WizardService {
	return &WizardService{sequencer: sequencer, sessions: sessions, tasks: tasks, ttl: ttl}
}

// Start opens a session. With a submission id the stored submission is
// resumed; an unknown id starts fresh and resumed reports false.
func (s *WizardService) Start(ctx context.Context, submissionID string) (sess *Session, resumed bool, err error) {
	state := domain.NewWizardState()
	if id := strings.TrimSpace(submissionID); id != "" {
		state, resumed, err = s.sequencer.Resume(ctx, id)
		if err != nil {
			return nil, false, err
		}
	}
	sess = &Session{ID: uuid.NewString(), State: state}
	if err := s.sessions.Save(ctx, sess.ID, state, s.ttl); err != nil {
		return nil, false, err
	}
	return sess, resumed, nil
}

// Get loads a session.
func (s *WizardService) Get(ctx context.Context, sessionID string) (*Session, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Session{ID: sessionID, State: state}, nil
}

// Advance submits the current step's values. The session is saved even when
// persistence fails so an allocated address survives for the retry.
func (s *WizardService) Advance(ctx context.Context, sessionID string, values map[string]any) (*AdvanceResult, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result, advErr := s.sequencer.Advance(ctx, state, values)
	if result != nil && result.State != nil {
		if err := s.sessions.Save(ctx, sessionID, result.State, s.ttl); err != nil && advErr == nil {
			return nil, err
		}
	}
	return result, advErr
}

// Retreat moves the session back one step.
func (s *WizardService) Retreat(ctx context.Context, sessionID string) (*Session, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, sessionID, s.sequencer.Retreat(state))
}

// JumpTo moves the session to an already validated step.
func (s *WizardService) JumpTo(ctx context.Context, sessionID string, step int) (*Session, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := s.sequencer.JumpTo(state, step)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, sessionID, next)
}

// Tasks lists the tasks available to the session's submission.
func (s *WizardService) Tasks(ctx context.Context, sessionID string) ([]TaskView, []string, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	views, err := s.tasks.TasksForSubmission(ctx, state.SubmissionID)
	if err != nil {
		return nil, nil, err
	}
	return views, state.PendingTasks, nil
}

// SelectTasks replaces the session's unsaved task selection.
func (s *WizardService) SelectTasks(ctx context.Context, sessionID string, taskIDs []string) (*Session, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids, err := s.tasks.ValidateSelection(ctx, state.SubmissionID, taskIDs)
	if err != nil {
		return nil, err
	}
	next := state.Clone()
	next.PendingTasks = ids
	return s.save(ctx, sessionID, next)
}

// SaveSelection acknowledges the pending selection and clears it.
func (s *WizardService) SaveSelection(ctx context.Context, sessionID string) (*Session, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Acknowledge(ctx, state.SubmissionID, state.PendingTasks); err != nil {
		return nil, err
	}
	next := state.Clone()
	next.PendingTasks = nil
	return s.save(ctx, sessionID, next)
}

func (s *WizardService) save(ctx context.Context, id string, state *domain.WizardState) (*Session, error) {
	if err := s.sessions.Save(ctx, id, state, s.ttl); err != nil {
		return nil, err
	}
	return &Session{ID: id, State: state}, nil
}
