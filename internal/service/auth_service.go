package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/onboarding-service/internal/auth"
	"github.com/spec-kit/onboarding-service/internal/config"
	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles manager login and activity tracking.
type AuthService struct {
	managers repository.ManagerRepository
	tokenMgr *auth.TokenManager
	now      func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	ManagerRepo repository.ManagerRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		managers: deps.ManagerRepo,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		now:      time.Now,
	}
}

// TokenManager exposes the token manager for middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// LoginManager authenticates a manager and issues a token.
func (s *AuthService) LoginManager(ctx context.Context, email, password string) (*domain.Manager, string, time.Time, error) {
	manager, err := s.managers.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !manager.IsActive || manager.PasswordHash == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(manager.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, exp, err := s.tokenMgr.GenerateToken(manager.ID, manager.TeamID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.UpdateActivity(ctx, manager.ID); err != nil {
		return nil, "", time.Time{}, err
	}
	return manager, token, exp, nil
}

// UpdateActivity stamps the manager's last activity time.
func (s *AuthService) UpdateActivity(ctx context.Context, managerID string) error {
	return s.managers.TouchActivity(ctx, managerID, s.now().UTC())
}
