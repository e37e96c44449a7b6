package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

// Submissions returns the submission repository view of the store.
func (s *Store) Submissions() repository.SubmissionRepository { return submissions{s} }

type submissions struct{ s *Store }

func (r submissions) Create(_ context.Context, patch domain.SubmissionPatch) (*domain.OnboardingSubmission, error) {
	txn := r.s.db.Txn(true)
	defer txn.Abort()

	now := r.s.now()
	sub := domain.OnboardingSubmission{
		ID:          uuid.NewString(),
		Status:      patch.Status,
		CurrentStep: patch.CurrentStep,
		Fields:      cloneFields(patch.Fields),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if sub.Status == "" {
		sub.Status = domain.SubmissionStatusDraft
	}
	row := &submissionRow{ID: sub.ID}
	if patch.GeneratedEmail != nil {
		if taken, err := emailInUse(txn, *patch.GeneratedEmail); err != nil {
			return nil, err
		} else if taken {
			return nil, repository.ErrConflict
		}
		email := *patch.GeneratedEmail
		sub.GeneratedEmail = &email
		row.GeneratedEmail = email
	}
	row.Submission = sub
	if err := txn.Insert(tableSubmission, row); err != nil {
		return nil, err
	}
	txn.Commit()
	return cloneSubmission(sub), nil
}

func (r submissions) Update(_ context.Context, id string, patch domain.SubmissionPatch) error {
	txn := r.s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableSubmission, indexID, id)
	if err != nil {
		return err
	}
	if raw == nil {
		return repository.ErrNotFound
	}
	current := raw.(*submissionRow)
	sub := *cloneSubmission(current.Submission)
	row := &submissionRow{ID: id, GeneratedEmail: current.GeneratedEmail}

	if patch.Status != "" {
		sub.Status = patch.Status
	}
	if patch.CurrentStep > 0 {
		sub.CurrentStep = patch.CurrentStep
	}
	if patch.GeneratedEmail != nil && sub.GeneratedEmail == nil {
		if taken, err := emailInUse(txn, *patch.GeneratedEmail); err != nil {
			return err
		} else if taken {
			return repository.ErrConflict
		}
		email := *patch.GeneratedEmail
		sub.GeneratedEmail = &email
		row.GeneratedEmail = email
	}
	for k, v := range patch.Fields {
		sub.Fields[k] = v
	}
	sub.UpdatedAt = r.s.now()
	row.Submission = sub

	if err := txn.Insert(tableSubmission, row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (r submissions) GetByID(_ context.Context, id string) (*domain.OnboardingSubmission, error) {
	txn := r.s.db.Txn(false)
	raw, err := txn.First(tableSubmission, indexID, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	return cloneSubmission(raw.(*submissionRow).Submission), nil
}

func emailInUse(txn *memdb.Txn, email string) (bool, error) {
	raw, err := txn.First(tableSubmission, "generated_email", email)
	return raw != nil, err
}

func cloneSubmission(sub domain.OnboardingSubmission) *domain.OnboardingSubmission {
	out := sub
	out.Fields = cloneFields(sub.Fields)
	if sub.GeneratedEmail != nil {
		email := *sub.GeneratedEmail
		out.GeneratedEmail = &email
	}
	return &out
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
