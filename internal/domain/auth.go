package domain

// SubjectType differentiates token subjects.
type SubjectType string

const (
	SubjectTypeManager SubjectType = "MANAGER"
)
