package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/onboarding-service/internal/api/dto"
	"github.com/spec-kit/onboarding-service/internal/auth"
	"github.com/spec-kit/onboarding-service/internal/service"
)

// ManagersHandler exposes manager login and manager-only actions.
type ManagersHandler struct {
	auth        *service.AuthService
	tasks       *service.TaskService
	submissions *service.SubmissionService
}

// NewManagersHandler constructs handler.
func NewManagersHandler(authService *service.AuthService, tasks *service.TaskService, submissions *service.SubmissionService) *ManagersHandler {
	return &ManagersHandler{auth: authService, tasks: tasks, submissions: submissions}
}

// Login handles POST /auth/managers/login.
func (h *ManagersHandler) Login(c *fiber.Ctx) error {
	var req dto.ManagerLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest("email and password required")
	}

	manager, token, exp, err := h.auth.LoginManager(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"manager": dto.ManagerResponse{
				ID:             manager.ID,
				TeamID:         manager.TeamID,
				Name:           manager.Name,
				Email:          manager.Email,
				LastActivityAt: manager.LastActivityAt,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ListTasks handles GET /manager/tasks?team_id=. The team defaults to the
// manager's own.
func (h *ManagersHandler) ListTasks(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	teamID := c.Query("team_id")
	if teamID == "" && principal.Manager.TeamID != nil {
		teamID = *principal.Manager.TeamID
	}
	tasks, err := h.tasks.ListAssignedTasks(c.UserContext(), principal.Manager.ID, teamID)
	if err != nil {
		return mapServiceError(err)
	}
	resp := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateTask handles POST /manager/tasks.
func (h *ManagersHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	task, err := h.tasks.CreateTask(c.UserContext(), auth.ManagerID(c), service.CreateTaskInput{
		TeamID:      req.TeamID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// AssignTask handles POST /manager/tasks/:id/assign.
func (h *ManagersHandler) AssignTask(c *fiber.Ctx) error {
	var req dto.AssignTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	if len(req.SubmissionIDs) == 0 {
		return badRequest("submission_ids required")
	}
	assigned, err := h.tasks.AssignTask(c.UserContext(), auth.ManagerID(c), c.Params("id"), req.SubmissionIDs)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"assigned": nonNil(assigned)}})
}

// CompleteSubmission handles POST /manager/submissions/:id/complete.
func (h *ManagersHandler) CompleteSubmission(c *fiber.Ctx) error {
	sub, err := h.submissions.CompleteSubmission(c.UserContext(), auth.ManagerID(c), c.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SubmissionResponse{
		ID:             sub.ID,
		Status:         string(sub.Status),
		CurrentStep:    sub.CurrentStep,
		GeneratedEmail: sub.GeneratedEmail,
		UpdatedAt:      sub.UpdatedAt,
	}})
}
