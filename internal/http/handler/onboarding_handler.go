package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/firstrun/firstrun-gate/internal/http/middleware"
	"github.com/firstrun/firstrun-gate/internal/service"
)

// OnboardingHandler exposes the onboarding flow endpoints. The flow's write
// endpoints sit behind authentication but not behind the area guard: the
// guard gates entry into the area, while a running flow holds its
// in_progress state in memory and must still be able to finish or skip.
type OnboardingHandler struct {
	Flow *service.OnboardingService
}

// NewOnboardingHandler creates the handler set.
func NewOnboardingHandler(flow *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{Flow: flow}
}

// Enter is the guarded entry point into the onboarding area.
func (h *OnboardingHandler) Enter(c *gin.Context) {
	snap := middleware.GetSnapshot(c)
	c.JSON(http.StatusOK, h.Flow.State(c.Request.Context(), snap.User))
}

// State reports the resolved onboarding status.
func (h *OnboardingHandler) State(c *gin.Context) {
	snap := middleware.GetSnapshot(c)
	if !snap.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}
	c.JSON(http.StatusOK, h.Flow.State(c.Request.Context(), snap.User))
}

// Start begins the flow.
func (h *OnboardingHandler) Start(c *gin.Context) {
	snap := middleware.GetSnapshot(c)
	if !snap.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}

	state, err := h.Flow.Start(c.Request.Context(), snap.User)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Complete finishes the flow and flips the server-authoritative flag.
func (h *OnboardingHandler) Complete(c *gin.Context) {
	snap := middleware.GetSnapshot(c)
	if !snap.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}

	state, err := h.Flow.Complete(c.Request.Context(), snap.User)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Skip records the flow as abandoned.
func (h *OnboardingHandler) Skip(c *gin.Context) {
	snap := middleware.GetSnapshot(c)
	if !snap.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}
	c.JSON(http.StatusOK, h.Flow.Skip(c.Request.Context(), snap.User))
}
