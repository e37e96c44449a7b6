package service

import (
	"context"
	"errors"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

var (
	// ErrNotSubmitted means the applicant has not finished the wizard yet.
	ErrNotSubmitted = errors.New("submission has not been submitted")
	// ErrNotSubmissionManager means the submission names a different manager.
	ErrNotSubmissionManager = errors.New("submission is assigned to another manager")
)

// SubmissionService holds manager-side submission actions.
type SubmissionService struct {
	submissions repository.SubmissionRepository
}

// NewSubmissionService builds the service.
func NewSubmissionService(submissions repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{submissions: submissions}
}

// CompleteSubmission marks a submitted submission completed. Completing an
// already completed submission is a no-op.
func (s *SubmissionService) CompleteSubmission(ctx context.Context, managerID, submissionID string) (*domain.OnboardingSubmission, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.ManagerID() != managerID {
		return nil, ErrNotSubmissionManager
	}
	switch sub.Status {
	case domain.SubmissionStatusCompleted:
		return sub, nil
	case domain.SubmissionStatusSubmitted:
	default:
		return nil, ErrNotSubmitted
	}
	if err := sub.TransitionTo(domain.SubmissionStatusCompleted); err != nil {
		return nil, err
	}
	if err := s.submissions.Update(ctx, sub.ID, domain.SubmissionPatch{Status: sub.Status}); err != nil {
		return nil, err
	}
	return sub, nil
}
