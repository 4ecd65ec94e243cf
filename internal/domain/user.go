package domain

import "time"

// User represents an end user as known to the application backend.
// HasOnboarded is the single server-authoritative onboarding signal; it
// overrides whatever a device-local progress record claims.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	AvatarURL    string
	HasOnboarded bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
