package dto

import "time"

// ManagerLoginRequest payload for login.
type ManagerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ManagerResponse is the public view of a manager.
type ManagerResponse struct {
	ID             string     `json:"id"`
	TeamID         *string    `json:"team_id,omitempty"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	TeamID      string `json:"team_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AssignTaskRequest payload.
type AssignTaskRequest struct {
	SubmissionIDs []string `json:"submission_ids"`
}

// SubmissionResponse is the manager's view of a submission's lifecycle.
type SubmissionResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	CurrentStep    int       `json:"current_step"`
	GeneratedEmail *string   `json:"generated_email,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}
