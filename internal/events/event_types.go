package events

import (
	"time"

	"github.com/spec-kit/onboarding-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOnboardingStarted   EventType = "onboarding_started"
	EventOnboardingCompleted EventType = "onboarding_completed"
	EventTaskAssignment      EventType = "task_assignment"
)

// Actor encapsulates actor metadata for an event. ManagerID is set when a
// manager action raised the event; applicant actions leave it nil.
type Actor struct {
	Type      domain.SubjectType `json:"type,omitempty"`
	ManagerID *string            `json:"manager_id,omitempty"`
}

// Event represents a milestone emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	SubmissionID string      `json:"submission_id"`
	Actor        Actor       `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// OnboardingStartedPayload is sent after the first successful save.
type OnboardingStartedPayload struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	PersonalEmail  string  `json:"personal_email,omitempty"`
	GeneratedEmail *string `json:"generated_email,omitempty"`
}

// OnboardingCompletedPayload carries the full submission snapshot and the
// manager contact resolved through the team/manager relation.
type OnboardingCompletedPayload struct {
	Status         domain.SubmissionStatus `json:"status"`
	GeneratedEmail *string                 `json:"generated_email,omitempty"`
	Fields         map[string]any          `json:"fields"`
	ManagerName    string                  `json:"manager_name,omitempty"`
	ManagerEmail   string                  `json:"manager_email,omitempty"`
}

// TaskAssignmentPayload tells an applicant about a newly assigned task.
type TaskAssignmentPayload struct {
	TaskID         string `json:"task_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	ManagerName    string `json:"manager_name,omitempty"`
	ApplicantName  string `json:"applicant_name,omitempty"`
	RecipientEmail string `json:"recipient_email,omitempty"`
}
