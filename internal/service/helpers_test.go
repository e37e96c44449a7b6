package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/events"
	"github.com/spec-kit/onboarding-service/internal/repository"
	"github.com/spec-kit/onboarding-service/internal/repository/memstore"
	"github.com/spec-kit/onboarding-service/internal/schema"
)

const testSchema = `
enums: {}
steps:
  - index: 1
    name: personal
    fields:
      - {name: firstName, column: first_name, type: string, required: true}
      - {name: lastName, column: last_name, type: string, required: true}
      - {name: personalEmail, column: personal_email, type: string}
  - index: 2
    name: team
    fields:
      - {name: teamId, column: team_id, type: string, required: true}
      - {name: managerId, column: manager_id, type: string, required: true}
  - index: 3
    name: documents
    fields:
      - {name: badgePhotoUrl, column: badge_photo_url, type: string}
      - {name: w9Completed, column: w9_completed, type: boolean}
  - index: 4
    name: review
    fields:
      - {name: reviewConfirmed, column: review_confirmed, type: boolean, required: true}
    checks:
      - {field: w9Completed, rule: is_true, message: The W-9 form must be completed before submitting}
      - {field: badgePhotoUrl, rule: present, message: A badge photo is required}
`

// flakySubmissions counts writes and can fail the next one.
type flakySubmissions struct {
	repository.SubmissionRepository
	mu       sync.Mutex
	writes   int
	failNext error
	statuses map[string][]domain.SubmissionStatus
}

func (f *flakySubmissions) take() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.failNext
	f.failNext = nil
	if err == nil {
		f.writes++
	}
	return err
}

func (f *flakySubmissions) record(id string, status domain.SubmissionStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = make(map[string][]domain.SubmissionStatus)
	}
	f.statuses[id] = append(f.statuses[id], status)
}

func (f *flakySubmissions) Create(ctx context.Context, patch domain.SubmissionPatch) (*domain.OnboardingSubmission, error) {
	if err := f.take(); err != nil {
		return nil, err
	}
	sub, err := f.SubmissionRepository.Create(ctx, patch)
	if err == nil {
		f.record(sub.ID, sub.Status)
	}
	return sub, err
}

func (f *flakySubmissions) Update(ctx context.Context, id string, patch domain.SubmissionPatch) error {
	if err := f.take(); err != nil {
		return err
	}
	err := f.SubmissionRepository.Update(ctx, id, patch)
	if err == nil && patch.Status != "" {
		f.record(id, patch.Status)
	}
	return err
}

func (f *flakySubmissions) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	store      *memstore.Store
	subs       *flakySubmissions
	dispatcher *recordingDispatcher
	allocator  *EmailAllocator
	seq        *Sequencer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDispatcher(t, nil)
}

func newTestEnvWithDispatcher(t *testing.T, dispatcher events.Dispatcher) *testEnv {
	t.Helper()
	store, err := memstore.New()
	if err != nil {
		t.Fatalf("memstore.New() error = %v", err)
	}
	sch, err := schema.Parse([]byte(testSchema))
	if err != nil {
		t.Fatalf("schema.Parse() error = %v", err)
	}
	if err := store.PutManager(domain.Manager{ID: "m1", Name: "Grace Hopper", Email: "grace@acme.test", IsActive: true}); err != nil {
		t.Fatalf("PutManager() error = %v", err)
	}

	env := &testEnv{
		store:      store,
		subs:       &flakySubmissions{SubmissionRepository: store.Submissions()},
		dispatcher: &recordingDispatcher{},
	}
	if dispatcher == nil {
		dispatcher = env.dispatcher
	}
	env.allocator = NewEmailAllocator(store.EmailAddresses(), "acme.test", zap.NewNop(), nil)
	env.seq = NewSequencer(SequencerDependencies{
		Schema:          sch,
		Drafts:          NewDraftStore(env.subs, time.Second),
		Allocator:       env.allocator,
		ManagerRepo:     store.Managers(),
		Dispatcher:      dispatcher,
		DispatchTimeout: time.Second,
		Logger:          zap.NewNop(),
	})
	return env
}

// advance fails the test unless the step validates and persists.
func (e *testEnv) advance(t *testing.T, state *domain.WizardState, values map[string]any) *domain.WizardState {
	t.Helper()
	result, err := e.seq.Advance(context.Background(), state, values)
	if err != nil {
		t.Fatalf("Advance(step %d) error = %v", state.Step, err)
	}
	if !result.Valid() {
		t.Fatalf("Advance(step %d) errors = %v", state.Step, result.Errors)
	}
	return result.State
}

func personalValues() map[string]any {
	return map[string]any{"firstName": "O'Brien", "lastName": "Smith-Jones", "personalEmail": "ob@example.com"}
}

func teamValues() map[string]any {
	return map[string]any{"teamId": "t1", "managerId": "m1"}
}
