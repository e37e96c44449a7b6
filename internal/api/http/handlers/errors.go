package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/onboarding-service/internal/repository"
	"github.com/spec-kit/onboarding-service/internal/service"
	"github.com/spec-kit/onboarding-service/internal/session"
	"github.com/spec-kit/onboarding-service/internal/storage"
	apperrors "github.com/spec-kit/onboarding-service/pkg/util"
)

// mapServiceError converts service and storage errors into domain errors
// for the error middleware. Unknown errors pass through unchanged.
func mapServiceError(err error) error {
	var domainErr *apperrors.DomainError
	var persistErr *service.PersistenceError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &domainErr):
		return domainErr
	case errors.As(err, &persistErr):
		return apperrors.NewPersistenceError(persistErr)
	case errors.Is(err, service.ErrAllocationExhausted):
		return apperrors.NewAllocationExhausted(err)
	case errors.Is(err, service.ErrJumpRejected),
		errors.Is(err, service.ErrTasksGated),
		errors.Is(err, service.ErrUnknownTask):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrUnknownKind):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, session.ErrNotFound):
		return apperrors.NewNotFound("session", nil)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("resource", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized(err.Error())
	case errors.Is(err, service.ErrNotTaskOwner),
		errors.Is(err, service.ErrNotSubmissionManager):
		return apperrors.NewForbidden(err.Error())
	case errors.Is(err, service.ErrNotSubmitted),
		errors.Is(err, service.ErrWizardCompleted):
		return apperrors.NewConflict(err.Error(), nil)
	}
	return err
}

func badRequest(message string) error {
	return fiber.NewError(http.StatusBadRequest, message)
}
