package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// ManagerRepository handles manager lookup and activity stamps.
type ManagerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Manager, error)
	GetByEmail(ctx context.Context, email string) (*domain.Manager, error)
	ListActive(ctx context.Context, teamID *string) ([]domain.Manager, error)
	TouchActivity(ctx context.Context, id string, at time.Time) error
}

type managerRepository struct {
	pool *pgxpool.Pool
}

// NewManagerRepository constructs repository.
func NewManagerRepository(pool *pgxpool.Pool) ManagerRepository {
	return &managerRepository{pool: pool}
}

const managerColumns = `id, team_id, name, email, password_hash, is_active, last_activity_at, created_at, updated_at`

func (r *managerRepository) GetByID(ctx context.Context, id string) (*domain.Manager, error) {
	return r.fetchSingle(ctx, `SELECT `+managerColumns+` FROM managers WHERE id=$1`, id)
}

func (r *managerRepository) GetByEmail(ctx context.Context, email string) (*domain.Manager, error) {
	return r.fetchSingle(ctx, `SELECT `+managerColumns+` FROM managers WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *managerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Manager, error) {
	var m domain.Manager
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&m.ID,
		&m.TeamID,
		&m.Name,
		&m.Email,
		&m.PasswordHash,
		&m.IsActive,
		&m.LastActivityAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *managerRepository) ListActive(ctx context.Context, teamID *string) ([]domain.Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers
        WHERE is_active=TRUE AND ($1::text IS NULL OR team_id=$1) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Manager{}
	for rows.Next() {
		var m domain.Manager
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Name, &m.Email, &m.PasswordHash, &m.IsActive, &m.LastActivityAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *managerRepository) TouchActivity(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE managers SET last_activity_at=$1 WHERE id=$2`, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
