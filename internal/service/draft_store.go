package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

// PersistenceError is a failed draft write or read. The wizard stays on the
// current step and the caller may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s draft: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DraftStore is the sequencer's view of submission persistence. Each call is
// one write attempt bounded by timeout; nothing is retried here.
type DraftStore struct {
	repo    repository.SubmissionRepository
	timeout time.Duration
}

// NewDraftStore wraps repo.
func NewDraftStore(repo repository.SubmissionRepository, timeout time.Duration) *DraftStore {
	return &DraftStore{repo: repo, timeout: timeout}
}

func (d *DraftStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

// CreateDraft inserts a new submission and returns its id.
func (d *DraftStore) CreateDraft(ctx context.Context, patch domain.SubmissionPatch) (string, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	sub, err := d.repo.Create(ctx, patch)
	if err != nil {
		return "", &PersistenceError{Op: "create", Err: err}
	}
	return sub.ID, nil
}

// UpdateDraft applies a partial update.
func (d *DraftStore) UpdateDraft(ctx context.Context, id string, patch domain.SubmissionPatch) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	if err := d.repo.Update(ctx, id, patch); err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}
	return nil
}

// LoadDraft fetches a submission. A missing row is reported as found == false
// with a nil error.
func (d *DraftStore) LoadDraft(ctx context.Context, id string) (*domain.OnboardingSubmission, bool, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	sub, err := d.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &PersistenceError{Op: "load", Err: err}
	}
	return sub, true, nil
}
