package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/onboarding-service/internal/domain"
	apperrors "github.com/spec-kit/onboarding-service/pkg/util"
)

// RequireManager ensures an authenticated manager is on the request.
func RequireManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeManager || principal.Manager == nil {
			return apperrors.NewForbidden("manager required")
		}
		return c.Next()
	}
}

// ManagerID returns the authenticated manager's id, or "".
func ManagerID(c *fiber.Ctx) string {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.Manager == nil {
		return ""
	}
	return principal.Manager.ID
}
