package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/onboarding-service/internal/api/dto"
	"github.com/spec-kit/onboarding-service/internal/service"
)

// ReferenceHandler serves dropdown data for the wizard.
type ReferenceHandler struct {
	reference *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(reference *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{reference: reference}
}

// Departments handles GET /reference/departments.
func (h *ReferenceHandler) Departments(c *fiber.Ctx) error {
	depts, err := h.reference.Departments(c.UserContext())
	if err != nil {
		return mapServiceError(err)
	}
	resp := make([]dto.DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		resp = append(resp, dto.DepartmentResponse{ID: d.ID, Name: d.Name, Description: d.Description})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Teams handles GET /reference/teams?department_id=.
func (h *ReferenceHandler) Teams(c *fiber.Ctx) error {
	teams, err := h.reference.Teams(c.UserContext(), optionalQuery(c, "department_id"))
	if err != nil {
		return mapServiceError(err)
	}
	resp := make([]dto.TeamResponse, 0, len(teams))
	for _, t := range teams {
		resp = append(resp, dto.TeamResponse{ID: t.ID, DepartmentID: t.DepartmentID, Name: t.Name, Description: t.Description})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Managers handles GET /reference/managers?team_id=.
func (h *ReferenceHandler) Managers(c *fiber.Ctx) error {
	managers, err := h.reference.Managers(c.UserContext(), optionalQuery(c, "team_id"))
	if err != nil {
		return mapServiceError(err)
	}
	resp := make([]dto.ManagerResponse, 0, len(managers))
	for _, m := range managers {
		resp = append(resp, dto.ManagerResponse{ID: m.ID, TeamID: m.TeamID, Name: m.Name, Email: m.Email})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Recruiters handles GET /reference/recruiters.
func (h *ReferenceHandler) Recruiters(c *fiber.Ctx) error {
	recruiters, err := h.reference.Recruiters(c.UserContext())
	if err != nil {
		return mapServiceError(err)
	}
	resp := make([]dto.RecruiterResponse, 0, len(recruiters))
	for _, r := range recruiters {
		resp = append(resp, dto.RecruiterResponse{ID: r.ID, Name: r.Name, Email: r.Email})
	}
	return c.JSON(fiber.Map{"data": resp})
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
