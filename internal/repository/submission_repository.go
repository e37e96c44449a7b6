package repository

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// SubmissionRepository persists onboarding submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, patch domain.SubmissionPatch) (*domain.OnboardingSubmission, error)
	Update(ctx context.Context, id string, patch domain.SubmissionPatch) error
	GetByID(ctx context.Context, id string) (*domain.OnboardingSubmission, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository returns a Postgres-backed implementation.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

var formColumn = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var bookkeepingColumns = map[string]struct{}{
	"id": {}, "status": {}, "current_step": {}, "generated_email": {}, "created_at": {}, "updated_at": {},
}

func (r *submissionRepository) Create(ctx context.Context, patch domain.SubmissionPatch) (*domain.OnboardingSubmission, error) {
	status := patch.Status
	if status == "" {
		status = domain.SubmissionStatusDraft
	}
	columns := []string{"status", "current_step"}
	args := []any{status, patch.CurrentStep}
	if patch.GeneratedEmail != nil {
		columns = append(columns, "generated_email")
		args = append(args, *patch.GeneratedEmail)
	}
	names, err := fieldColumns(patch.Fields)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		columns = append(columns, pgx.Identifier{name}.Sanitize())
		args = append(args, patch.Fields[name])
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO onboarding_submissions (%s) VALUES (%s) RETURNING id, created_at, updated_at`,
		strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	sub := &domain.OnboardingSubmission{
		Status:         status,
		CurrentStep:    patch.CurrentStep,
		GeneratedEmail: patch.GeneratedEmail,
		Fields:         copyFields(patch.Fields),
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return sub, nil
}

// Update writes only the columns present in the patch. A generated email
// already on the row is never overwritten.
func (r *submissionRepository) Update(ctx context.Context, id string, patch domain.SubmissionPatch) error {
	sets := []string{}
	args := []any{}
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if patch.Status != "" {
		add("status=$%d", patch.Status)
	}
	if patch.CurrentStep > 0 {
		add("current_step=$%d", patch.CurrentStep)
	}
	if patch.GeneratedEmail != nil {
		add("generated_email=COALESCE(generated_email, $%d)", *patch.GeneratedEmail)
	}
	names, err := fieldColumns(patch.Fields)
	if err != nil {
		return err
	}
	for _, name := range names {
		add(pgx.Identifier{name}.Sanitize()+"=$%d", patch.Fields[name])
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE onboarding_submissions SET %s, updated_at=NOW() WHERE id=$%d`,
		strings.Join(sets, ", "), len(args))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.OnboardingSubmission, error) {
	rows, err := r.pool.Query(ctx, `SELECT * FROM onboarding_submissions WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	sub := &domain.OnboardingSubmission{Fields: make(map[string]any)}
	for i, fd := range rows.FieldDescriptions() {
		v := values[i]
		switch fd.Name {
		case "id":
			sub.ID = fmt.Sprint(v)
		case "status":
			if s, ok := v.(string); ok {
				sub.Status = domain.SubmissionStatus(s)
			}
		case "current_step":
			sub.CurrentStep = toInt(v)
		case "generated_email":
			if s, ok := v.(string); ok {
				sub.GeneratedEmail = &s
			}
		case "created_at":
			sub.CreatedAt, _ = v.(time.Time)
		case "updated_at":
			sub.UpdatedAt, _ = v.(time.Time)
		default:
			sub.Fields[fd.Name] = v
		}
	}
	return sub, rows.Err()
}

func fieldColumns(fields map[string]any) ([]string, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !formColumn.MatchString(name) {
			return nil, fmt.Errorf("invalid submission column %q", name)
		}
		if _, reserved := bookkeepingColumns[name]; reserved {
			return nil, fmt.Errorf("column %q is managed by the store", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	}
	return 0
}
