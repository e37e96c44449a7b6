package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/onboarding-service/internal/session"
)

func newWizardService(t *testing.T) (*testEnv, *WizardService) {
	t.Helper()
	env := newTestEnv(t)
	sessions, err := session.NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	tasks := NewTaskService(TaskDependencies{
		TaskRepo:       env.store.Tasks(),
		AssignmentRepo: env.store.TaskAssignments(),
		SubmissionRepo: env.store.Submissions(),
		ManagerRepo:    env.store.Managers(),
	})
	return env, NewWizardService(env.seq, sessions, tasks, time.Hour)
}

func TestWizardServiceKeepsEmailAcrossFailedSave(t *testing.T) {
	env, svc := newWizardService(t)
	ctx := context.Background()

	sess, resumed, err := svc.Start(ctx, "")
	if err != nil || resumed {
		t.Fatalf("Start() = %v, %v", resumed, err)
	}

	env.subs.failNext = errors.New("pool closed")
	if _, err := svc.Advance(ctx, sess.ID, personalValues()); err == nil {
		t.Fatal("expected persistence error")
	}
	stored, err := svc.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.State.Step != 1 || stored.State.GeneratedEmail == nil {
		t.Fatalf("session after failure = %+v", stored.State)
	}

	result, err := svc.Advance(ctx, sess.ID, personalValues())
	if err != nil {
		t.Fatalf("retry Advance() error = %v", err)
	}
	if result.State.Step != 2 || *result.State.GeneratedEmail != *stored.State.GeneratedEmail {
		t.Fatalf("retry state = %+v", result.State)
	}
}

func TestWizardServiceResumeAndNavigate(t *testing.T) {
	_, svc := newWizardService(t)
	ctx := context.Background()

	sess, _, _ := svc.Start(ctx, "")
	first, err := svc.Advance(ctx, sess.ID, personalValues())
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	resumedSess, resumed, err := svc.Start(ctx, first.State.SubmissionID)
	if err != nil || !resumed {
		t.Fatalf("Start(resume) = %v, %v", resumed, err)
	}
	if resumedSess.ID == sess.ID || resumedSess.State.Step != 2 {
		t.Fatalf("resumed session = %+v", resumedSess)
	}

	back, err := svc.Retreat(ctx, resumedSess.ID)
	if err != nil || back.State.Step != 1 {
		t.Fatalf("Retreat() = %+v, %v", back, err)
	}
	if _, err := svc.JumpTo(ctx, resumedSess.ID, 3); !errors.Is(err, ErrJumpRejected) {
		t.Fatalf("JumpTo(3) error = %v, want ErrJumpRejected", err)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want session.ErrNotFound", err)
	}
}

func TestWizardServiceTaskSelection(t *testing.T) {
	env, svc := newWizardService(t)
	ctx := context.Background()

	sess, _, _ := svc.Start(ctx, "")
	if _, _, err := svc.Tasks(ctx, sess.ID); !errors.Is(err, ErrTasksGated) {
		t.Fatalf("Tasks() before team step error = %v, want ErrTasksGated", err)
	}

	if _, err := svc.Advance(ctx, sess.ID, personalValues()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if _, err := svc.Advance(ctx, sess.ID, teamValues()); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	task, err := svc.tasks.CreateTask(ctx, "m1", CreateTaskInput{TeamID: "t1", Title: "Sign NDA"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	selected, err := svc.SelectTasks(ctx, sess.ID, []string{task.ID})
	if err != nil {
		t.Fatalf("SelectTasks() error = %v", err)
	}
	if len(selected.State.PendingTasks) != 1 {
		t.Fatalf("PendingTasks = %v", selected.State.PendingTasks)
	}
	saved, err := svc.SaveSelection(ctx, sess.ID)
	if err != nil {
		t.Fatalf("SaveSelection() error = %v", err)
	}
	if len(saved.State.PendingTasks) != 0 {
		t.Fatal("pending selection not cleared")
	}

	views, _, err := svc.Tasks(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Tasks() error = %v", err)
	}
	if len(views) != 1 || views[0].AcknowledgedAt == nil {
		t.Fatalf("views = %+v", views)
	}
	records, _ := env.store.TaskAssignments().ListBySubmission(ctx, saved.State.SubmissionID)
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
}
