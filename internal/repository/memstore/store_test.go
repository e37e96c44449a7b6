package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }

func TestLedgerInsertConflict(t *testing.T) {
	ctx := context.Background()
	ledger := newTestStore(t).EmailAddresses()

	record := &domain.EmailAddressRecord{Email: "ada.lovelace@example.com", FirstName: "Ada", LastName: "Lovelace", Active: true}
	if err := ledger.Insert(ctx, record); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if record.CreatedAt.IsZero() {
		t.Fatal("Insert() did not stamp CreatedAt")
	}
	exists, err := ledger.Exists(ctx, "ada.lovelace@example.com")
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v, want true, nil", exists, err)
	}

	dup := &domain.EmailAddressRecord{Email: "ada.lovelace@example.com", FirstName: "Ada", LastName: "Byron"}
	if err := ledger.Insert(ctx, dup); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("Insert() duplicate error = %v, want ErrConflict", err)
	}
}

func TestSubmissionGeneratedEmailIsImmutable(t *testing.T) {
	ctx := context.Background()
	subs := newTestStore(t).Submissions()

	sub, err := subs.Create(ctx, domain.SubmissionPatch{
		Fields:         map[string]any{domain.ColumnFirstName: "Ada"},
		CurrentStep:    2,
		Status:         domain.SubmissionStatusInProgress,
		GeneratedEmail: strPtr("ada.lovelace@example.com"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = subs.Update(ctx, sub.ID, domain.SubmissionPatch{
		Fields:         map[string]any{domain.ColumnLastName: "Lovelace"},
		CurrentStep:    3,
		GeneratedEmail: strPtr("other@example.com"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := subs.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.GeneratedEmail == nil || *got.GeneratedEmail != "ada.lovelace@example.com" {
		t.Fatalf("GeneratedEmail = %v, want ada.lovelace@example.com", got.GeneratedEmail)
	}
	if got.CurrentStep != 3 || got.Text(domain.ColumnFirstName) != "Ada" || got.Text(domain.ColumnLastName) != "Lovelace" {
		t.Fatalf("unexpected submission %+v", got)
	}
	if got.Status != domain.SubmissionStatusInProgress {
		t.Fatalf("Status = %s, want in_progress", got.Status)
	}
}

func TestSubmissionGeneratedEmailUniqueAcrossSubmissions(t *testing.T) {
	ctx := context.Background()
	subs := newTestStore(t).Submissions()

	if _, err := subs.Create(ctx, domain.SubmissionPatch{GeneratedEmail: strPtr("a.b@example.com")}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := subs.Create(ctx, domain.SubmissionPatch{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err = subs.Update(ctx, second.ID, domain.SubmissionPatch{GeneratedEmail: strPtr("a.b@example.com")})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("Update() error = %v, want ErrConflict", err)
	}
}

func TestSubmissionNotFound(t *testing.T) {
	subs := newTestStore(t).Submissions()
	if _, err := subs.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := subs.Update(context.Background(), "missing", domain.SubmissionPatch{CurrentStep: 2}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestAssignmentAcknowledgeKeepsFirstTimestamp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	assignments := store.TaskAssignments()

	created, err := assignments.Assign(ctx, "task-1", "sub-1")
	if err != nil || !created {
		t.Fatalf("Assign() = %v, %v, want true, nil", created, err)
	}
	created, err = assignments.Assign(ctx, "task-1", "sub-1")
	if err != nil || created {
		t.Fatalf("Assign() again = %v, %v, want false, nil", created, err)
	}

	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := assignments.Acknowledge(ctx, "task-1", "sub-1", first); err != nil {
		t.Fatalf("Acknowledge() error = %v", err)
	}
	if err := assignments.Acknowledge(ctx, "task-1", "sub-1", first.Add(time.Hour)); err != nil {
		t.Fatalf("Acknowledge() again error = %v", err)
	}

	list, err := assignments.ListBySubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("ListBySubmission() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListBySubmission() len = %d, want 1", len(list))
	}
	if list[0].AcknowledgedAt == nil || !list[0].AcknowledgedAt.Equal(first) {
		t.Fatalf("AcknowledgedAt = %v, want %v", list[0].AcknowledgedAt, first)
	}
}

func TestTasksScopedToManagerAndTeam(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Tasks()

	for _, task := range []*domain.Task{
		{ManagerID: "m1", TeamID: "t1", Title: "Read handbook", IsActive: true},
		{ManagerID: "m1", TeamID: "t1", Title: "Retired", IsActive: false},
		{ManagerID: "m1", TeamID: "t2", Title: "Other team", IsActive: true},
	} {
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, err := repo.ListActiveByManagerTeam(ctx, "m1", "t1")
	if err != nil {
		t.Fatalf("ListActiveByManagerTeam() error = %v", err)
	}
	if len(list) != 1 || list[0].Title != "Read handbook" {
		t.Fatalf("ListActiveByManagerTeam() = %+v", list)
	}

	empty, err := repo.ListActiveByManagerTeam(ctx, "m9", "t9")
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListActiveByManagerTeam() = %v, %v, want empty", empty, err)
	}
}

func TestManagerLookupAndActivity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if err := store.PutManager(domain.Manager{ID: "m1", Name: "Grace", Email: "Grace@Example.com", IsActive: true}); err != nil {
		t.Fatalf("PutManager() error = %v", err)
	}
	managers := store.Managers()

	m, err := managers.GetByEmail(ctx, "grace@example.com")
	if err != nil || m.ID != "m1" {
		t.Fatalf("GetByEmail() = %v, %v", m, err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := managers.TouchActivity(ctx, "m1", at); err != nil {
		t.Fatalf("TouchActivity() error = %v", err)
	}
	m, _ = managers.GetByID(ctx, "m1")
	if m.LastActivityAt == nil || !m.LastActivityAt.Equal(at) {
		t.Fatalf("LastActivityAt = %v, want %v", m.LastActivityAt, at)
	}
	if err := managers.TouchActivity(ctx, "nobody", at); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("TouchActivity() error = %v, want ErrNotFound", err)
	}
}
