package domain

// WizardState is the sequencer's explicit state for one applicant session.
// Values holds every field collected so far, keyed by form field name.
type WizardState struct {
	SubmissionID     string           `json:"submission_id,omitempty"`
	Step             int              `json:"step"`
	HighestValidated int              `json:"highest_validated"`
	Completed        bool             `json:"completed"`
	Status           SubmissionStatus `json:"status"`
	Values           map[string]any   `json:"values"`
	GeneratedEmail   *string          `json:"generated_email,omitempty"`
	PendingTasks     []string         `json:"pending_tasks,omitempty"`
}

// NewWizardState starts a fresh draft at step 1.
func NewWizardState() *WizardState {
	return &WizardState{Step: 1, Status: SubmissionStatusDraft, Values: map[string]any{}}
}

// Clone returns a deep enough copy for the sequencer to mutate safely.
func (s *WizardState) Clone() *WizardState {
	out := *s
	out.Values = make(map[string]any, len(s.Values))
	for k, v := range s.Values {
		out.Values[k] = v
	}
	if s.GeneratedEmail != nil {
		email := *s.GeneratedEmail
		out.GeneratedEmail = &email
	}
	out.PendingTasks = append([]string(nil), s.PendingTasks...)
	return &out
}
