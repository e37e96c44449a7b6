package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// EmailAddressRepository is the allocation ledger. The email column carries
// a uniqueness constraint, so Insert reports ErrConflict for a taken address.
type EmailAddressRepository interface {
	Exists(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, record *domain.EmailAddressRecord) error
}

type emailAddressRepository struct {
	pool *pgxpool.Pool
}

// NewEmailAddressRepository constructs repository.
func NewEmailAddressRepository(pool *pgxpool.Pool) EmailAddressRepository {
	return &emailAddressRepository{pool: pool}
}

func (r *emailAddressRepository) Exists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM email_addresses WHERE email=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *emailAddressRepository) Insert(ctx context.Context, record *domain.EmailAddressRecord) error {
	const query = `
        INSERT INTO email_addresses (email, first_name, last_name, active)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		record.Email,
		record.FirstName,
		record.LastName,
		record.Active,
	).Scan(&record.CreatedAt)
	return translate(err)
}
