package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// TaskRepository manages manager-created tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListActiveByManagerTeam(ctx context.Context, managerID, teamID string) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository constructs repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (manager_id, team_id, title, description, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		task.ManagerID,
		task.TeamID,
		task.Title,
		task.Description,
		task.IsActive,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return translate(err)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
        SELECT id, manager_id, team_id, title, description, is_active, created_at, updated_at
        FROM tasks WHERE id=$1`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.ManagerID,
		&task.TeamID,
		&task.Title,
		&task.Description,
		&task.IsActive,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (r *taskRepository) ListActiveByManagerTeam(ctx context.Context, managerID, teamID string) ([]domain.Task, error) {
	const query = `
        SELECT id, manager_id, team_id, title, description, is_active, created_at, updated_at
        FROM tasks WHERE manager_id=$1 AND team_id=$2 AND is_active=TRUE
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, managerID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Task{}
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.ManagerID, &task.TeamID, &task.Title, &task.Description, &task.IsActive, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
