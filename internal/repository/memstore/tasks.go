package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

// Tasks returns the task repository view of the store.
func (s *Store) Tasks() repository.TaskRepository { return tasks{s} }

// TaskAssignments returns the task assignment repository view of the store.
func (s *Store) TaskAssignments() repository.TaskAssignmentRepository { return assignments{s} }

type tasks struct{ s *Store }

func (r tasks) Create(_ context.Context, task *domain.Task) error {
	task.ID = uuid.NewString()
	task.CreatedAt = r.s.now()
	task.UpdatedAt = task.CreatedAt
	row := *task
	return r.s.put(tableTask, &row)
}

func (r tasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	raw, err := r.s.db.Txn(false).First(tableTask, indexID, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	task := *raw.(*domain.Task)
	return &task, nil
}

func (r tasks) ListActiveByManagerTeam(_ context.Context, managerID, teamID string) ([]domain.Task, error) {
	it, err := r.s.db.Txn(false).Get(tableTask, "manager_team", managerID, teamID)
	if err != nil {
		return nil, err
	}
	result := []domain.Task{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		task := *obj.(*domain.Task)
		if task.IsActive {
			result = append(result, task)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type assignments struct{ s *Store }

func (r assignments) Assign(_ context.Context, taskID, submissionID string) (bool, error) {
	txn := r.s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableTaskAssignment, "pair", taskID, submissionID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	row := &domain.TaskAssignment{
		ID:           uuid.NewString(),
		TaskID:       taskID,
		SubmissionID: submissionID,
		CreatedAt:    r.s.now(),
	}
	if err := txn.Insert(tableTaskAssignment, row); err != nil {
		return false, err
	}
	txn.Commit()
	return true, nil
}

func (r assignments) Acknowledge(_ context.Context, taskID, submissionID string, at time.Time) error {
	txn := r.s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableTaskAssignment, "pair", taskID, submissionID)
	if err != nil {
		return err
	}
	var row domain.TaskAssignment
	if raw != nil {
		row = *raw.(*domain.TaskAssignment)
		if row.AcknowledgedAt != nil {
			return nil
		}
	} else {
		row = domain.TaskAssignment{
			ID:           uuid.NewString(),
			TaskID:       taskID,
			SubmissionID: submissionID,
			CreatedAt:    r.s.now(),
		}
	}
	ack := at
	row.AcknowledgedAt = &ack
	if err := txn.Insert(tableTaskAssignment, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (r assignments) ListBySubmission(_ context.Context, submissionID string) ([]domain.TaskAssignment, error) {
	it, err := r.s.db.Txn(false).Get(tableTaskAssignment, "submission", submissionID)
	if err != nil {
		return nil, err
	}
	result := []domain.TaskAssignment{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		result = append(result, *obj.(*domain.TaskAssignment))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
