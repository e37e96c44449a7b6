package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

// Teams returns the team repository view of the store.
func (s *Store) Teams() repository.TeamRepository { return teams{s} }

// Departments returns the department repository view of the store.
func (s *Store) Departments() repository.DepartmentRepository { return departments{s} }

// Managers returns the manager repository view of the store.
func (s *Store) Managers() repository.ManagerRepository { return managers{s} }

// Recruiters returns the recruiter repository view of the store.
func (s *Store) Recruiters() repository.RecruiterRepository { return recruiters{s} }

type teams struct{ s *Store }

func (r teams) GetByID(_ context.Context, id string) (*domain.Team, error) {
	raw, err := r.s.db.Txn(false).First(tableTeam, indexID, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	team := *raw.(*domain.Team)
	return &team, nil
}

func (r teams) ListActive(_ context.Context, departmentID *string) ([]domain.Team, error) {
	it, err := r.s.db.Txn(false).Get(tableTeam, indexID)
	if err != nil {
		return nil, err
	}
	result := []domain.Team{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		team := *obj.(*domain.Team)
		if !team.IsActive || (departmentID != nil && team.DepartmentID != *departmentID) {
			continue
		}
		result = append(result, team)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type departments struct{ s *Store }

func (r departments) ListActive(_ context.Context) ([]domain.Department, error) {
	it, err := r.s.db.Txn(false).Get(tableDepartment, indexID)
	if err != nil {
		return nil, err
	}
	result := []domain.Department{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if dept := *obj.(*domain.Department); dept.IsActive {
			result = append(result, dept)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type managers struct{ s *Store }

func (r managers) GetByID(_ context.Context, id string) (*domain.Manager, error) {
	return r.first(indexID, id)
}

func (r managers) GetByEmail(_ context.Context, email string) (*domain.Manager, error) {
	return r.first("email", email)
}

func (r managers) first(index, arg string) (*domain.Manager, error) {
	raw, err := r.s.db.Txn(false).First(tableManager, index, arg)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	m := *raw.(*domain.Manager)
	return &m, nil
}

func (r managers) ListActive(_ context.Context, teamID *string) ([]domain.Manager, error) {
	it, err := r.s.db.Txn(false).Get(tableManager, indexID)
	if err != nil {
		return nil, err
	}
	result := []domain.Manager{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		m := *obj.(*domain.Manager)
		if !m.IsActive {
			continue
		}
		if teamID != nil && (m.TeamID == nil || *m.TeamID != *teamID) {
			continue
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r managers) TouchActivity(_ context.Context, id string, at time.Time) error {
	txn := r.s.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tableManager, indexID, id)
	if err != nil {
		return err
	}
	if raw == nil {
		return repository.ErrNotFound
	}
	m := *raw.(*domain.Manager)
	stamp := at
	m.LastActivityAt = &stamp
	if err := txn.Insert(tableManager, &m); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

type recruiters struct{ s *Store }

func (r recruiters) ListActive(_ context.Context) ([]domain.Recruiter, error) {
	it, err := r.s.db.Txn(false).Get(tableRecruiter, indexID)
	if err != nil {
		return nil, err
	}
	result := []domain.Recruiter{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if rec := *obj.(*domain.Recruiter); rec.IsActive {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
