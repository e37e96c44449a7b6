package service

import (
	"context"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

// ReferenceService serves read-only dropdown data for the wizard.
type ReferenceService struct {
	departments repository.DepartmentRepository
	teams       repository.TeamRepository
	managers    repository.ManagerRepository
	recruiters  repository.RecruiterRepository
}

// ReferenceDependencies bundles the reference repositories.
type ReferenceDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	TeamRepo       repository.TeamRepository
	ManagerRepo    repository.ManagerRepository
	RecruiterRepo  repository.RecruiterRepository
}

// NewReferenceService builds the service.
func NewReferenceService(deps ReferenceDependencies) *ReferenceService {
	return &ReferenceService{
		departments: deps.DepartmentRepo,
		teams:       deps.TeamRepo,
		managers:    deps.ManagerRepo,
		recruiters:  deps.RecruiterRepo,
	}
}

func (s *ReferenceService) Departments(ctx context.Context) ([]domain.Department, error) {
	return s.departments.ListActive(ctx)
}

func (s *ReferenceService) Teams(ctx context.Context, departmentID *string) ([]domain.Team, error) {
	return s.teams.ListActive(ctx, departmentID)
}

func (s *ReferenceService) Managers(ctx context.Context, teamID *string) ([]domain.Manager, error) {
	return s.managers.ListActive(ctx, teamID)
}

func (s *ReferenceService) Recruiters(ctx context.Context) ([]domain.Recruiter, error) {
	return s.recruiters.ListActive(ctx)
}
