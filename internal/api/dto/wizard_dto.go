package dto

import (
	"time"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// StartSessionRequest opens a wizard session, optionally resuming a submission.
type StartSessionRequest struct {
	SubmissionID string `json:"submission_id"`
}

// AdvanceRequest carries the current step's form values.
type AdvanceRequest struct {
	Values map[string]any `json:"values"`
}

// JumpRequest payload.
type JumpRequest struct {
	Step int `json:"step"`
}

// TaskSelectionRequest replaces the pending task selection.
type TaskSelectionRequest struct {
	TaskIDs []string `json:"task_ids"`
}

// SessionResponse describes a wizard session.
type SessionResponse struct {
	ID               string                  `json:"id"`
	SubmissionID     string                  `json:"submission_id,omitempty"`
	Step             int                     `json:"step"`
	TotalSteps       int                     `json:"total_steps"`
	HighestValidated int                     `json:"highest_validated"`
	Completed        bool                    `json:"completed"`
	Status           domain.SubmissionStatus `json:"status"`
	GeneratedEmail   *string                 `json:"generated_email,omitempty"`
	Values           map[string]any          `json:"values"`
	PendingTasks     []string                `json:"pending_tasks"`
	Resumed          *bool                   `json:"resumed,omitempty"`
}

// AdvanceResponse reports an advance attempt. Errors holds field messages
// when the step did not validate.
type AdvanceResponse struct {
	Session   SessionResponse   `json:"session"`
	Valid     bool              `json:"valid"`
	Errors    map[string]string `json:"errors,omitempty"`
	Completed bool              `json:"completed"`
}

// TaskResponse is one task as shown to applicants or managers.
type TaskResponse struct {
	ID             string     `json:"id"`
	TeamID         string     `json:"team_id"`
	ManagerID      string     `json:"manager_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Assigned       *bool      `json:"assigned,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TaskListResponse pairs the available tasks with the pending selection.
type TaskListResponse struct {
	Tasks        []TaskResponse `json:"tasks"`
	PendingTasks []string       `json:"pending_tasks"`
}
