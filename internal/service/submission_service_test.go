package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository/memstore"
)

func TestCompleteSubmission(t *testing.T) {
	ctx := context.Background()
	store, err := memstore.New()
	if err != nil {
		t.Fatalf("memstore.New() error = %v", err)
	}
	create := func(status domain.SubmissionStatus) string {
		sub, err := store.Submissions().Create(ctx, domain.SubmissionPatch{
			CurrentStep: 13,
			Status:      status,
			Fields:      map[string]any{domain.ColumnManagerID: "m1"},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		return sub.ID
	}
	svc := NewSubmissionService(store.Submissions())

	submitted := create(domain.SubmissionStatusSubmitted)
	sub, err := svc.CompleteSubmission(ctx, "m1", submitted)
	if err != nil {
		t.Fatalf("CompleteSubmission() error = %v", err)
	}
	if sub.Status != domain.SubmissionStatusCompleted {
		t.Fatalf("Status = %s", sub.Status)
	}
	stored, _ := store.Submissions().GetByID(ctx, submitted)
	if stored.Status != domain.SubmissionStatusCompleted {
		t.Fatalf("stored Status = %s", stored.Status)
	}
	if _, err := svc.CompleteSubmission(ctx, "m1", submitted); err != nil {
		t.Fatalf("repeat CompleteSubmission() error = %v", err)
	}

	if _, err := svc.CompleteSubmission(ctx, "m2", submitted); !errors.Is(err, ErrNotSubmissionManager) {
		t.Fatalf("other manager error = %v, want ErrNotSubmissionManager", err)
	}
	draft := create(domain.SubmissionStatusInProgress)
	if _, err := svc.CompleteSubmission(ctx, "m1", draft); !errors.Is(err, ErrNotSubmitted) {
		t.Fatalf("in-progress error = %v, want ErrNotSubmitted", err)
	}
}
