package guard

import (
	"sync"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/session"
)

// Navigator performs an imperative navigation to a named destination.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Evaluator drives one guard across repeated evaluations of a changing
// session. Redirect dispatch is idempotent: re-evaluating the same state
// does not re-issue the navigation. When the state changes, the newer
// decision wins and any previously issued redirect is forgotten, so a stale
// decision is never enforced.
type Evaluator struct {
	decide DecideFunc
	nav    Navigator

	mu         sync.Mutex
	dispatched bool
	lastTarget string
}

// NewEvaluator creates an evaluator for a guard decision function.
func NewEvaluator(decide DecideFunc, nav Navigator) *Evaluator {
	return &Evaluator{decide: decide, nav: nav}
}

// Evaluate runs the guard against the current state and applies its side
// effect. It returns the decision so the caller can key rendering off it.
func (e *Evaluator) Evaluate(snap session.Snapshot, status domain.OnboardingStatus) Decision {
	decision := e.decide(snap, status)

	e.mu.Lock()
	defer e.mu.Unlock()

	if decision.Outcome != OutcomeRedirect {
		e.dispatched = false
		e.lastTarget = ""
		return decision
	}

	if e.dispatched && e.lastTarget == decision.Target {
		return decision
	}

	e.dispatched = true
	e.lastTarget = decision.Target
	e.nav.Navigate(decision.Target)
	return decision
}
