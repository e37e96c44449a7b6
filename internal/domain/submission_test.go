package domain

import (
	"errors"
	"testing"
)

func TestTransitionToRejectsRegression(t *testing.T) {
	sub := &OnboardingSubmission{Status: SubmissionStatusSubmitted}

	if err := sub.TransitionTo(SubmissionStatusInProgress); !errors.Is(err, ErrStatusRegression) {
		t.Fatalf("expected ErrStatusRegression, got %v", err)
	}
	if sub.Status != SubmissionStatusSubmitted {
		t.Fatalf("status changed to %s", sub.Status)
	}
	if err := sub.TransitionTo(SubmissionStatusCompleted); err != nil {
		t.Fatalf("TransitionTo(completed) unexpected error: %v", err)
	}
}

func TestLaterStatus(t *testing.T) {
	got := LaterStatus(SubmissionStatusSubmitted, SubmissionStatusInProgress)
	if got != SubmissionStatusSubmitted {
		t.Fatalf("LaterStatus() = %s, want submitted", got)
	}
	got = LaterStatus(SubmissionStatusDraft, SubmissionStatusInProgress)
	if got != SubmissionStatusInProgress {
		t.Fatalf("LaterStatus() = %s, want in_progress", got)
	}
}

func TestSubmissionBlockers(t *testing.T) {
	blockers := SubmissionBlockers(map[string]any{
		ColumnW9Completed:   false,
		ColumnBadgePhotoURL: "https://files.example.com/badge.png",
	})
	if len(blockers) != 1 || blockers[0] != ColumnW9Completed {
		t.Fatalf("expected only w9 blocker, got %v", blockers)
	}

	if blockers := SubmissionBlockers(map[string]any{
		ColumnW9Completed:   true,
		ColumnBadgePhotoURL: " ",
	}); len(blockers) != 1 || blockers[0] != ColumnBadgePhotoURL {
		t.Fatalf("expected badge blocker, got %v", blockers)
	}
}
