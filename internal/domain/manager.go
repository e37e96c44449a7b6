package domain

import "time"

// Manager supervises a team and receives completion notifications.
type Manager struct {
	ID             string
	TeamID         *string
	Name           string
	Email          string
	PasswordHash   string
	IsActive       bool
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Recruiter is read-only reference data selected during onboarding.
type Recruiter struct {
	ID        string
	Name      string
	Email     string
	IsActive  bool
	CreatedAt time.Time
}
