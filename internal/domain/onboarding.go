package domain

import "time"

// OnboardingStatus is the closed set of onboarding lifecycle values.
type OnboardingStatus string

const (
	OnboardingNotStarted OnboardingStatus = "not_started"
	OnboardingInProgress OnboardingStatus = "in_progress"
	OnboardingCompleted  OnboardingStatus = "completed"
	OnboardingSkipped    OnboardingStatus = "skipped"
)

// Valid reports whether s is one of the known status values.
func (s OnboardingStatus) Valid() bool {
	switch s {
	case OnboardingNotStarted, OnboardingInProgress, OnboardingCompleted, OnboardingSkipped:
		return true
	}
	return false
}

// OnboardingRecord is the device-local progress record for a single user.
// Only the onboarding flow writes it; the resolver treats it as read-only.
type OnboardingRecord struct {
	Status      OnboardingStatus `json:"status"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}
