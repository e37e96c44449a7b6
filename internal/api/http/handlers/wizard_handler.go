package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/onboarding-service/internal/api/dto"
	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/schema"
	"github.com/spec-kit/onboarding-service/internal/service"
)

// WizardHandler exposes the applicant-facing wizard endpoints.
type WizardHandler struct {
	wizard *service.WizardService
	schema *schema.Schema
}

// NewWizardHandler constructs handler.
func NewWizardHandler(wizard *service.WizardService, s *schema.Schema) *WizardHandler {
	return &WizardHandler{wizard: wizard, schema: s}
}

// Schema handles GET /wizard/schema.
func (h *WizardHandler) Schema(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"steps": h.schema.AllSteps(),
		"enums": h.schema.Enums(),
	}})
}

// Start handles POST /wizard/sessions.
func (h *WizardHandler) Start(c *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest("invalid payload")
		}
	}
	sess, resumed, err := h.wizard.Start(c.UserContext(), req.SubmissionID)
	if err != nil {
		return mapServiceError(err)
	}
	resp := h.sessionResponse(sess.ID, sess.State)
	if req.SubmissionID != "" {
		resp.Resumed = &resumed
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": resp})
}

// Get handles GET /wizard/sessions/:id.
func (h *WizardHandler) Get(c *fiber.Ctx) error {
	sess, err := h.wizard.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": h.sessionResponse(sess.ID, sess.State)})
}

// Advance handles POST /wizard/sessions/:id/advance. A step that fails
// validation answers 422 with the field messages.
func (h *WizardHandler) Advance(c *fiber.Ctx) error {
	var req dto.AdvanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	id := c.Params("id")
	result, err := h.wizard.Advance(c.UserContext(), id, req.Values)
	if err != nil {
		return mapServiceError(err)
	}

	resp := dto.AdvanceResponse{
		Session:   h.sessionResponse(id, result.State),
		Valid:     result.Valid(),
		Errors:    result.Errors,
		Completed: result.Completed,
	}
	status := http.StatusOK
	if !resp.Valid {
		status = http.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"data": resp})
}

// Retreat handles POST /wizard/sessions/:id/retreat.
func (h *WizardHandler) Retreat(c *fiber.Ctx) error {
	sess, err := h.wizard.Retreat(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": h.sessionResponse(sess.ID, sess.State)})
}

// Jump handles POST /wizard/sessions/:id/jump.
func (h *WizardHandler) Jump(c *fiber.Ctx) error {
	var req dto.JumpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	sess, err := h.wizard.JumpTo(c.UserContext(), c.Params("id"), req.Step)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": h.sessionResponse(sess.ID, sess.State)})
}

// Tasks handles GET /wizard/sessions/:id/tasks.
func (h *WizardHandler) Tasks(c *fiber.Ctx) error {
	views, pending, err := h.wizard.Tasks(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	resp := dto.TaskListResponse{
		Tasks:        make([]dto.TaskResponse, 0, len(views)),
		PendingTasks: nonNil(pending),
	}
	for _, v := range views {
		assigned := v.Assigned
		item := taskResponse(&v.Task)
		item.Assigned = &assigned
		item.AcknowledgedAt = v.AcknowledgedAt
		resp.Tasks = append(resp.Tasks, item)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// SelectTasks handles PUT /wizard/sessions/:id/tasks/selection.
func (h *WizardHandler) SelectTasks(c *fiber.Ctx) error {
	var req dto.TaskSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	sess, err := h.wizard.SelectTasks(c.UserContext(), c.Params("id"), req.TaskIDs)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": h.sessionResponse(sess.ID, sess.State)})
}

// Acknowledge handles POST /wizard/sessions/:id/tasks/acknowledge.
func (h *WizardHandler) Acknowledge(c *fiber.Ctx) error {
	sess, err := h.wizard.SaveSelection(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(fiber.Map{"data": h.sessionResponse(sess.ID, sess.State)})
}

func (h *WizardHandler) sessionResponse(id string, state *domain.WizardState) dto.SessionResponse {
	return dto.SessionResponse{
		ID:               id,
		SubmissionID:     state.SubmissionID,
		Step:             state.Step,
		TotalSteps:       h.schema.Steps(),
		HighestValidated: state.HighestValidated,
		Completed:        state.Completed,
		Status:           state.Status,
		GeneratedEmail:   state.GeneratedEmail,
		Values:           state.Values,
		PendingTasks:     nonNil(state.PendingTasks),
	}
}

func taskResponse(t *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		TeamID:      t.TeamID,
		ManagerID:   t.ManagerID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
