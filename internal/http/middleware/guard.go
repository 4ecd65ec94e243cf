package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/guard"
	"github.com/firstrun/firstrun-gate/internal/onboarding"
)

// Guards adapts the pure guard decision functions to gin route groups. The
// render decision is computed synchronously with the redirect decision: a
// pending or redirecting request aborts before any protected handler runs,
// so protected content is never written while a redirect is in flight.
type Guards struct {
	Resolver *onboarding.Resolver
	Routes   guard.Routes
}

// NewGuards creates the guard middleware set.
func NewGuards(resolver *onboarding.Resolver, routes guard.Routes) *Guards {
	return &Guards{Resolver: resolver, Routes: routes}
}

// Protected gates regions requiring authentication and completed onboarding.
func (g *Guards) Protected() gin.HandlerFunc {
	return g.handle(guard.DecideProtected(g.Routes))
}

// Onboarding gates the onboarding flow area.
func (g *Guards) Onboarding() gin.HandlerFunc {
	return g.handle(guard.DecideOnboarding(g.Routes))
}

// GuestOnly gates areas meant for unauthenticated visitors.
func (g *Guards) GuestOnly() gin.HandlerFunc {
	return g.handle(guard.DecideGuest(g.Routes))
}

func (g *Guards) handle(decide guard.DecideFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := GetSnapshot(c)

		var status domain.OnboardingStatus
		if snap.Authenticated {
			status = g.Resolver.Resolve(c.Request.Context(), snap.User)
		}

		switch decision := decide(snap, status); decision.Outcome {
		case guard.OutcomePending:
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": "pending"})
		case guard.OutcomeRedirect:
			c.Redirect(http.StatusFound, decision.Target)
			c.Abort()
		default:
			c.Next()
		}
	}
}
