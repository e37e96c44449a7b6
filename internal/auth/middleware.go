package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository"
	apperrors "github.com/spec-kit/onboarding-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated manager.
type Principal struct {
	SubjectType domain.SubjectType
	Manager     *domain.Manager
}

// ActivityRecorder stamps a manager's last activity.
type ActivityRecorder interface {
	UpdateActivity(ctx context.Context, managerID string) error
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	managers repository.ManagerRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware. activity may be nil.
func NewAuthMiddleware(tokens *TokenManager, managers repository.ManagerRepository, activity ActivityRecorder, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, managers: managers, activity: activity, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.Subject != domain.SubjectTypeManager {
		return apperrors.NewUnauthorized("unknown subject")
	}

	ctx := c.UserContext()
	manager, err := m.managers.GetByID(ctx, claims.RegisteredClaims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("manager not found")
		}
		return apperrors.MapError(err)
	}
	if !manager.IsActive {
		return apperrors.NewForbidden("manager inactive")
	}

	if m.activity != nil {
		if err := m.activity.UpdateActivity(ctx, manager.ID); err != nil {
			m.logger.Warn("update manager activity", zap.String("manager_id", manager.ID), zap.Error(err))
		}
	}

	c.Locals(principalKey, &Principal{SubjectType: claims.Subject, Manager: manager})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
