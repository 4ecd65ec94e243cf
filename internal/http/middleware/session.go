package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/firstrun/firstrun-gate/internal/session"
)

const snapshotKey = "sessionSnapshot"

// SessionCookie is the cookie the login handlers set alongside the JSON
// token payload.
const SessionCookie = "fr_session"

// Session resolves the caller's session once per request and attaches the
// snapshot for guards and handlers downstream.
type Session struct {
	Tokens *session.TokenStore
}

// Attach is the gin middleware entry point.
func (m *Session) Attach(c *gin.Context) {
	snap := m.Tokens.Resolve(c.Request.Context(), extractToken(c))
	c.Set(snapshotKey, snap)
	c.Next()
}

// GetSnapshot returns the session snapshot attached by Session.Attach. When
// the middleware never ran, it reports a loading snapshot: guards must not
// decide on missing information.
func GetSnapshot(c *gin.Context) session.Snapshot {
	value, ok := c.Get(snapshotKey)
	if !ok {
		return session.Pending()
	}
	snap, ok := value.(session.Snapshot)
	if !ok {
		return session.Pending()
	}
	return snap
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie
}
