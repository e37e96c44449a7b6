package domain

import (
	"errors"
	"strings"
	"time"
)

// SubmissionStatus enumerates lifecycle states for an onboarding submission.
type SubmissionStatus string

const (
	SubmissionStatusDraft      SubmissionStatus = "draft"
	SubmissionStatusInProgress SubmissionStatus = "in_progress"
	SubmissionStatusSubmitted  SubmissionStatus = "submitted"
	SubmissionStatusCompleted  SubmissionStatus = "completed"
)

// ErrStatusRegression is returned when a status change would move backwards.
var ErrStatusRegression = errors.New("submission status cannot move backwards")

// Rank orders statuses; unknown values rank below draft.
func (s SubmissionStatus) Rank() int {
	switch s {
	case SubmissionStatusDraft:
		return 0
	case SubmissionStatusInProgress:
		return 1
	case SubmissionStatusSubmitted:
		return 2
	case SubmissionStatusCompleted:
		return 3
	default:
		return -1
	}
}

// Terminal reports whether the wizard is finished for this status.
func (s SubmissionStatus) Terminal() bool {
	return s.Rank() >= SubmissionStatusSubmitted.Rank()
}

// LaterStatus returns whichever status is further along.
func LaterStatus(a, b SubmissionStatus) SubmissionStatus {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Column names the core reads directly. Every other form column is opaque.
const (
	ColumnFirstName     = "first_name"
	ColumnLastName      = "last_name"
	ColumnPersonalEmail = "personal_email"
	ColumnTeamID        = "team_id"
	ColumnManagerID     = "manager_id"
	ColumnRecruiterID   = "recruiter_id"
	ColumnW9Completed   = "w9_completed"
	ColumnBadgePhotoURL = "badge_photo_url"
)

// OnboardingSubmission is the aggregate root for one applicant's onboarding record.
type OnboardingSubmission struct {
	ID             string
	Status         SubmissionStatus
	CurrentStep    int
	GeneratedEmail *string
	Fields         map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmissionPatch carries a partial update: one step's columns plus bookkeeping.
type SubmissionPatch struct {
	Fields         map[string]any
	CurrentStep    int
	Status         SubmissionStatus
	GeneratedEmail *string
}

// TransitionTo moves the status forward, rejecting regressions.
func (s *OnboardingSubmission) TransitionTo(next SubmissionStatus) error {
	if next.Rank() < 0 {
		return errors.New("unknown submission status")
	}
	if next.Rank() < s.Status.Rank() {
		return ErrStatusRegression
	}
	s.Status = next
	return nil
}

// Text returns a trimmed string column, or "" when unset.
func (s *OnboardingSubmission) Text(column string) string {
	return FieldText(s.Fields, column)
}

// Flag returns a boolean column, false when unset.
func (s *OnboardingSubmission) Flag(column string) bool {
	return FieldFlag(s.Fields, column)
}

// ManagerID returns the selected manager reference.
func (s *OnboardingSubmission) ManagerID() string { return s.Text(ColumnManagerID) }

// TeamID returns the selected team reference.
func (s *OnboardingSubmission) TeamID() string { return s.Text(ColumnTeamID) }

// SubmissionBlockers lists the columns preventing a move to submitted.
func SubmissionBlockers(fields map[string]any) []string {
	var blockers []string
	if !FieldFlag(fields, ColumnW9Completed) {
		blockers = append(blockers, ColumnW9Completed)
	}
	if FieldText(fields, ColumnBadgePhotoURL) == "" {
		blockers = append(blockers, ColumnBadgePhotoURL)
	}
	return blockers
}

// FieldText reads a string value from a column map.
func FieldText(fields map[string]any, column string) string {
	switch v := fields[column].(type) {
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v != nil {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

// FieldFlag reads a boolean value from a column map.
func FieldFlag(fields map[string]any, column string) bool {
	switch v := fields[column].(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	}
	return false
}
