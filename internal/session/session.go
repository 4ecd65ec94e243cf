package session

import "github.com/firstrun/firstrun-gate/internal/domain"

// Snapshot is the session state a guard evaluates against. Loading is true
// only while the store is still performing its initial credential check;
// guards must treat it as a first-class state and render nothing final.
type Snapshot struct {
	Loading       bool
	Authenticated bool
	User          *domain.User
}

// Anonymous returns the snapshot for a finished session check with no user.
func Anonymous() Snapshot {
	return Snapshot{}
}

// Pending returns the snapshot for a session check still in flight.
func Pending() Snapshot {
	return Snapshot{Loading: true}
}

// ForUser returns an authenticated snapshot for user.
func ForUser(user *domain.User) Snapshot {
	if user == nil {
		return Anonymous()
	}
	return Snapshot{Authenticated: true, User: user}
}
