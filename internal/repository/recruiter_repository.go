package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// RecruiterRepository reads recruiter reference data.
type RecruiterRepository interface {
	ListActive(ctx context.Context) ([]domain.Recruiter, error)
}

type recruiterRepository struct {
	pool *pgxpool.Pool
}

// NewRecruiterRepository constructs repository.
func NewRecruiterRepository(pool *pgxpool.Pool) RecruiterRepository {
	return &recruiterRepository{pool: pool}
}

func (r *recruiterRepository) ListActive(ctx context.Context) ([]domain.Recruiter, error) {
	const query = `
        SELECT id, name, email, is_active, created_at
        FROM recruiters WHERE is_active=TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Recruiter{}
	for rows.Next() {
		var rec domain.Recruiter
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.IsActive, &rec.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
