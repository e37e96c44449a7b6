package domain

import "time"

// Task is a manager-created item applicants must acknowledge.
type Task struct {
	ID          string
	ManagerID   string
	TeamID      string
	Title       string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskAssignment links a task to a submission.
type TaskAssignment struct {
	ID             string
	TaskID         string
	SubmissionID   string
	AcknowledgedAt *time.Time
	CreatedAt      time.Time
}

// Acknowledged reports whether the applicant has acknowledged the task.
func (a TaskAssignment) Acknowledged() bool {
	return a.AcknowledgedAt != nil
}
