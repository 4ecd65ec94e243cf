package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/firstrun/firstrun-gate/internal/http/middleware"
	"github.com/firstrun/firstrun-gate/internal/service"
)

// AppHandler stands in for the protected application area. The real
// application lives elsewhere; these endpoints exist so the gate has
// something to guard end to end.
type AppHandler struct {
	Auth *service.AuthService
}

// NewAppHandler creates the handler.
func NewAppHandler(auth *service.AuthService) *AppHandler {
	return &AppHandler{Auth: auth}
}

// Home is the main application root.
func (h *AppHandler) Home(c *gin.Context) {
	snap := middleware.GetSnapshot(c)
	if snap.User == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}
	profile, err := h.Auth.Me(c.Request.Context(), snap.User.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": "app", "user": profile})
}

// Landing is the guest-only entry page.
func (h *AppHandler) Landing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"area":     "guest",
		"login":    "/auth/login",
		"register": "/auth/register",
	})
}
