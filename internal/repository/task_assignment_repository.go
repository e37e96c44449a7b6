package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// TaskAssignmentRepository links tasks to submissions. (task_id, submission_id)
// is unique and acknowledged_at is written at most once.
type TaskAssignmentRepository interface {
	Assign(ctx context.Context, taskID, submissionID string) (bool, error)
	Acknowledge(ctx context.Context, taskID, submissionID string, at time.Time) error
	ListBySubmission(ctx context.Context, submissionID string) ([]domain.TaskAssignment, error)
}

type taskAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewTaskAssignmentRepository constructs repository.
func NewTaskAssignmentRepository(pool *pgxpool.Pool) TaskAssignmentRepository {
	return &taskAssignmentRepository{pool: pool}
}

// Assign records the pair if absent and reports whether a row was created.
func (r *taskAssignmentRepository) Assign(ctx context.Context, taskID, submissionID string) (bool, error) {
	const query = `
        INSERT INTO task_assignments (task_id, submission_id)
        VALUES ($1,$2)
        ON CONFLICT (task_id, submission_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, taskID, submissionID)
	if err != nil {
		return false, translate(err)
	}
	return cmd.RowsAffected() > 0, nil
}

// Acknowledge creates the pair or fills a missing timestamp; an existing
// timestamp is kept.
func (r *taskAssignmentRepository) Acknowledge(ctx context.Context, taskID, submissionID string, at time.Time) error {
	const query = `
        INSERT INTO task_assignments (task_id, submission_id, acknowledged_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (task_id, submission_id)
        DO UPDATE SET acknowledged_at = COALESCE(task_assignments.acknowledged_at, EXCLUDED.acknowledged_at)`
	_, err := r.pool.Exec(ctx, query, taskID, submissionID, at)
	return translate(err)
}

func (r *taskAssignmentRepository) ListBySubmission(ctx context.Context, submissionID string) ([]domain.TaskAssignment, error) {
	const query = `
        SELECT id, task_id, submission_id, acknowledged_at, created_at
        FROM task_assignments WHERE submission_id=$1
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TaskAssignment{}
	for rows.Next() {
		var a domain.TaskAssignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.SubmissionID, &a.AcknowledgedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
