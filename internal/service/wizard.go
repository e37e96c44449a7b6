package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/events"
	"github.com/spec-kit/onboarding-service/internal/observability"
	"github.com/spec-kit/onboarding-service/internal/repository"
	"github.com/spec-kit/onboarding-service/internal/schema"
)

var (
	// ErrJumpRejected is returned for a jump past the validated watermark.
	ErrJumpRejected = errors.New("cannot jump to a step that has not been validated")
	// ErrWizardCompleted is returned when a finished wizard is asked to move forward.
	ErrWizardCompleted = errors.New("onboarding already submitted")
)

const msgNameNotAllocatable = "Name must contain letters or numbers"

// AdvanceResult reports one advance attempt. Errors is non-empty when the
// step did not validate; State is the sequencer state after the attempt.
type AdvanceResult struct {
	State     *domain.WizardState
	Errors    map[string]string
	Completed bool
}

// Valid reports whether the step passed validation.
func (r *AdvanceResult) Valid() bool { return len(r.Errors) == 0 }

// Sequencer drives the onboarding wizard through its steps.
type Sequencer struct {
	schema          *schema.Schema
	drafts          *DraftStore
	allocator       *EmailAllocator
	managers        repository.ManagerRepository
	dispatcher      events.Dispatcher
	dispatchTimeout time.Duration
	logger          *zap.Logger
	metrics         *observability.Metrics
}

// SequencerDependencies bundles the sequencer's collaborators.
type SequencerDependencies struct {
	Schema          *schema.Schema
	Drafts          *DraftStore
	Allocator       *EmailAllocator
	ManagerRepo     repository.ManagerRepository
	Dispatcher      events.Dispatcher
	DispatchTimeout time.Duration
	Logger          *zap.Logger
	Metrics         *observability.Metrics
}

// NewSequencer builds the state machine.
func NewSequencer(deps SequencerDependencies) *Sequencer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		schema:          deps.Schema,
		drafts:          deps.Drafts,
		allocator:       deps.Allocator,
		managers:        deps.ManagerRepo,
		dispatcher:      deps.Dispatcher,
		dispatchTimeout: deps.DispatchTimeout,
		logger:          logger,
		metrics:         deps.Metrics,
	}
}

// Steps returns N.
func (s *Sequencer) Steps() int { return s.schema.Steps() }

// Advance validates the current step, persists it, and moves forward.
// Validation failures come back in the result with a nil error and nothing
// persisted. A *PersistenceError or ErrAllocationExhausted leaves the step
// index unchanged; the returned state still carries any address allocated
// before the failure so a retry reuses it.
func (s *Sequencer) Advance(ctx context.Context, current *domain.WizardState, input map[string]any) (*AdvanceResult, error) {
	if current.Completed {
		return &AdvanceResult{State: current, Completed: true}, ErrWizardCompleted
	}
	state := current.Clone()
	step := state.Step
	last := s.schema.Steps()

	candidate := schema.Values(state.Values).Clone()
	for name, v := range s.schema.StepValues(step, input) {
		candidate[name] = v
	}

	if result := s.schema.ValidateStep(step, candidate); !result.Valid {
		s.metrics.RecordAdvance(observability.AdvanceInvalid)
		return &AdvanceResult{State: current, Errors: result.Errors}, nil
	}
	if step == last {
		if errs := s.submissionBlockers(candidate); len(errs) > 0 {
			s.metrics.RecordAdvance(observability.AdvanceInvalid)
			return &AdvanceResult{State: current, Errors: errs}, nil
		}
	}

	if step == s.schema.NameStep() && state.GeneratedEmail == nil {
		first, _ := schema.Text(candidate["firstName"])
		lastName, _ := schema.Text(candidate["lastName"])
		email, err := s.allocator.Allocate(ctx, first, lastName)
		switch {
		case errors.Is(err, ErrNameNotAllocatable):
			s.metrics.RecordAdvance(observability.AdvanceInvalid)
			return &AdvanceResult{State: current, Errors: map[string]string{
				"firstName": msgNameNotAllocatable,
				"lastName":  msgNameNotAllocatable,
			}}, nil
		case errors.Is(err, ErrAllocationExhausted):
			s.metrics.RecordAdvance(observability.AdvanceAllocationExhausted)
			return &AdvanceResult{State: current}, err
		case err != nil:
			s.metrics.RecordAdvance(observability.AdvancePersistenceFailed)
			return &AdvanceResult{State: current}, &PersistenceError{Op: "allocate email", Err: err}
		}
		state.GeneratedEmail = &email
	}

	status := domain.SubmissionStatusInProgress
	nextStep := step + 1
	if step == last {
		status = domain.SubmissionStatusSubmitted
		nextStep = last
	}
	status = domain.LaterStatus(state.Status, status)

	patch := domain.SubmissionPatch{
		Fields:         s.schema.Columns(step, candidate),
		CurrentStep:    nextStep,
		Status:         status,
		GeneratedEmail: state.GeneratedEmail,
	}

	created := false
	if state.SubmissionID == "" {
		id, err := s.drafts.CreateDraft(ctx, patch)
		if err != nil {
			return s.persistFailed(current, state, err)
		}
		state.SubmissionID = id
		created = true
	} else if err := s.drafts.UpdateDraft(ctx, state.SubmissionID, patch); err != nil {
		return s.persistFailed(current, state, err)
	}

	state.Values = candidate
	state.Status = status
	if step > state.HighestValidated {
		state.HighestValidated = step
	}
	state.Step = nextStep

	if created {
		s.publishStarted(ctx, state)
	}
	if step == last {
		state.Completed = true
		s.metrics.RecordAdvance(observability.AdvanceCompleted)
		s.publishCompleted(ctx, state, patch)
		return &AdvanceResult{State: state, Completed: true}, nil
	}
	s.metrics.RecordAdvance(observability.AdvanceAdvanced)
	return &AdvanceResult{State: state}, nil
}

func (s *Sequencer) persistFailed(current, attempted *domain.WizardState, err error) (*AdvanceResult, error) {
	s.metrics.RecordAdvance(observability.AdvancePersistenceFailed)
	kept := current.Clone()
	kept.GeneratedEmail = attempted.GeneratedEmail
	s.logger.Warn("draft save failed",
		zap.String("submission_id", current.SubmissionID),
		zap.Int("step", current.Step),
		zap.Error(err))
	return &AdvanceResult{State: kept}, err
}

func (s *Sequencer) submissionBlockers(values schema.Values) map[string]string {
	columns := make(map[string]any)
	for _, step := range s.schema.AllSteps() {
		for col, v := range s.schema.Columns(step.Index, values) {
			columns[col] = v
		}
	}
	errs := make(map[string]string)
	for _, col := range domain.SubmissionBlockers(columns) {
		switch col {
		case domain.ColumnW9Completed:
			errs["w9Completed"] = "The W-9 form must be completed before submitting"
		case domain.ColumnBadgePhotoURL:
			errs["badgePhotoUrl"] = "A badge photo is required before submitting"
		}
	}
	return errs
}

// Retreat moves back one step, never below 1. It does not validate or persist.
func (s *Sequencer) Retreat(current *domain.WizardState) *domain.WizardState {
	state := current.Clone()
	if state.Completed {
		return state
	}
	if state.Step > 1 {
		state.Step--
	}
	return state
}

// JumpTo moves to target when it is the current step or at or below the
// highest step validated in this session.
func (s *Sequencer) JumpTo(current *domain.WizardState, target int) (*domain.WizardState, error) {
	if current.Completed {
		return current, ErrWizardCompleted
	}
	if target < 1 || target > s.schema.Steps() {
		return current, ErrJumpRejected
	}
	if target != current.Step && target > current.HighestValidated {
		return current, ErrJumpRejected
	}
	state := current.Clone()
	state.Step = target
	return state, nil
}

// Resume rebuilds sequencer state from a stored submission. found is false
// when the id is unknown, in which case a fresh state is returned.
func (s *Sequencer) Resume(ctx context.Context, submissionID string) (*domain.WizardState, bool, error) {
	sub, found, err := s.drafts.LoadDraft(ctx, submissionID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return domain.NewWizardState(), false, nil
	}

	step := sub.CurrentStep
	if step < 1 {
		step = 1
	}
	if step > s.schema.Steps() {
		step = s.schema.Steps()
	}
	state := &domain.WizardState{
		SubmissionID:     sub.ID,
		Step:             step,
		HighestValidated: step - 1,
		Status:           sub.Status,
		Values:           s.schema.ValuesFromColumns(sub.Fields),
		GeneratedEmail:   sub.GeneratedEmail,
		Completed:        sub.Status.Terminal(),
	}
	return state, true, nil
}

func (s *Sequencer) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (s *Sequencer) publishStarted(ctx context.Context, state *domain.WizardState) {
	first, _ := schema.Text(state.Values["firstName"])
	last, _ := schema.Text(state.Values["lastName"])
	personal, _ := schema.Text(state.Values["personalEmail"])
	s.publish(ctx, events.Event{
		Type:         events.EventOnboardingStarted,
		SubmissionID: state.SubmissionID,
		Payload: events.OnboardingStartedPayload{
			FirstName:      first,
			LastName:       last,
			PersonalEmail:  personal,
			GeneratedEmail: state.GeneratedEmail,
		},
	})
}

func (s *Sequencer) publishCompleted(ctx context.Context, state *domain.WizardState, patch domain.SubmissionPatch) {
	fields := make(map[string]any)
	for _, step := range s.schema.AllSteps() {
		for col, v := range s.schema.Columns(step.Index, state.Values) {
			fields[col] = v
		}
	}
	payload := events.OnboardingCompletedPayload{
		Status:         patch.Status,
		GeneratedEmail: state.GeneratedEmail,
		Fields:         fields,
	}

	if managerID := domain.FieldText(fields, domain.ColumnManagerID); managerID != "" && s.managers != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
		manager, err := s.managers.GetByID(lookupCtx, managerID)
		cancel()
		if err != nil {
			s.logger.Warn("resolve manager for completion notice",
				zap.String("submission_id", state.SubmissionID),
				zap.String("manager_id", managerID),
				zap.Error(err))
		} else {
			payload.ManagerName = manager.Name
			payload.ManagerEmail = manager.Email
		}
	}

	s.publish(ctx, events.Event{
		Type:         events.EventOnboardingCompleted,
		SubmissionID: state.SubmissionID,
		Payload:      payload,
	})
}

func (s *Sequencer) lookupTimeout() time.Duration {
	if s.dispatchTimeout > 0 {
		return s.dispatchTimeout
	}
	return 5 * time.Second
}
