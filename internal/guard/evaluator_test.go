package guard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/guard"
	"github.com/firstrun/firstrun-gate/internal/session"
)

type recordingNavigator struct {
	calls []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.calls = append(n.calls, path)
}

func TestEvaluatorDispatchesRedirectOnce(t *testing.T) {
	nav := &recordingNavigator{}
	eval := guard.NewEvaluator(guard.DecideProtected(testRoutes), nav)

	snap := session.Anonymous()

	// Re-evaluating the same state repeatedly must not re-issue navigation.
	for i := 0; i < 3; i++ {
		decision := eval.Evaluate(snap, domain.OnboardingSkipped)
		require.Equal(t, guard.RedirectTo("/login"), decision)
	}

	require.Equal(t, []string{"/login"}, nav.calls)
}

func TestEvaluatorNewerStateWins(t *testing.T) {
	nav := &recordingNavigator{}
	eval := guard.NewEvaluator(guard.DecideProtected(testRoutes), nav)

	// First evaluation: signed out, redirected to login.
	eval.Evaluate(session.Anonymous(), domain.OnboardingSkipped)

	// User signs in before the redirect completes; the new state's decision
	// replaces the stale one.
	authed := session.ForUser(&domain.User{ID: "u1"})
	decision := eval.Evaluate(authed, domain.OnboardingNotStarted)
	require.Equal(t, guard.RedirectTo("/onboarding"), decision)

	require.Equal(t, []string{"/login", "/onboarding"}, nav.calls)
}

func TestEvaluatorReissuesAfterNonRedirectState(t *testing.T) {
	nav := &recordingNavigator{}
	eval := guard.NewEvaluator(guard.DecideProtected(testRoutes), nav)

	eval.Evaluate(session.Anonymous(), domain.OnboardingSkipped)

	// Authorized evaluation clears the dispatch memory.
	authed := session.ForUser(&domain.User{ID: "u1"})
	require.Equal(t, guard.Authorized(), eval.Evaluate(authed, domain.OnboardingCompleted))

	// A later logout redirects again.
	eval.Evaluate(session.Anonymous(), domain.OnboardingSkipped)

	require.Equal(t, []string{"/login", "/login"}, nav.calls)
}

func TestEvaluatorPendingIssuesNoNavigation(t *testing.T) {
	nav := &recordingNavigator{}
	eval := guard.NewEvaluator(guard.DecideGuest(testRoutes), nav)

	require.Equal(t, guard.Pending(), eval.Evaluate(session.Pending(), domain.OnboardingNotStarted))
	require.Empty(t, nav.calls)
}

func TestNavigatorFunc(t *testing.T) {
	var got string
	nav := guard.NavigatorFunc(func(path string) { got = path })
	nav.Navigate("/app")
	require.Equal(t, "/app", got)
}
