package guard

import (
	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/session"
)

// Outcome enumerates what a guard does with a request: hold it while the
// session check finishes, send it elsewhere, or let it through.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeRedirect
	OutcomeAuthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeAuthorized:
		return "authorized"
	}
	return "unknown"
}

// Decision is the result of one guard evaluation. Target is set only for
// OutcomeRedirect. The render decision and the redirect decision are one
// value by construction: protected content can never render on the same
// evaluation that issues a redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Routes names the three destinations guards redirect to.
type Routes struct {
	Login      string
	Onboarding string
	App        string
}

// Pending is the hold-state decision.
func Pending() Decision { return Decision{Outcome: OutcomePending} }

// RedirectTo builds a redirect decision.
func RedirectTo(target string) Decision {
	return Decision{Outcome: OutcomeRedirect, Target: target}
}

// Authorized is the pass-through decision.
func Authorized() Decision { return Decision{Outcome: OutcomeAuthorized} }

// DecideFunc is a pure guard state machine: snapshot plus resolved
// onboarding status in, decision out.
type DecideFunc func(snap session.Snapshot, status domain.OnboardingStatus) Decision

// DecideProtected gates regions that require authentication and completed
// onboarding.
func DecideProtected(routes Routes) DecideFunc {
	return func(snap session.Snapshot, status domain.OnboardingStatus) Decision {
		if snap.Loading {
			return Pending()
		}
		if !snap.Authenticated {
			return RedirectTo(routes.Login)
		}
		if status == domain.OnboardingNotStarted || status == domain.OnboardingInProgress {
			return RedirectTo(routes.Onboarding)
		}
		return Authorized()
	}
}

// DecideOnboarding gates the onboarding flow itself, the inverse of the
// protected gate. Once a status resolves past onboarding the flow is not
// re-enterable; combined with the resolver collapsing a persisted
// in_progress to skipped, this is what evicts a reloaded mid-flow session.
func DecideOnboarding(routes Routes) DecideFunc {
	return func(snap session.Snapshot, status domain.OnboardingStatus) Decision {
		if snap.Loading {
			return Pending()
		}
		if !snap.Authenticated {
			return RedirectTo(routes.Login)
		}
		if status == domain.OnboardingNotStarted {
			return Authorized()
		}
		return RedirectTo(routes.App)
	}
}

// DecideGuest gates areas meant only for unauthenticated visitors. The
// onboarding status plays no part in it.
func DecideGuest(routes Routes) DecideFunc {
	return func(snap session.Snapshot, _ domain.OnboardingStatus) Decision {
		if snap.Loading {
			return Pending()
		}
		if snap.Authenticated {
			return RedirectTo(routes.App)
		}
		return Authorized()
	}
}
