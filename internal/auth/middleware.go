package auth

import (
	"log/slog"
	"net/http"
	"time"

	"bookstore/internal/session"

	"github.com/gin-gonic/gin"
)

// RequireLogin guards protected routes. The session lookup is an explicit
// dependency: the middleware reads the cookie token, resolves it through the
// manager, and redirects anonymous requests to /login. It checks session
// presence only; it does not re-verify that the user row still exists.
func RequireLogin(sessionMgr session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		sess, err := sessionMgr.Get(c.Request.Context(), token)
		if err != nil {
			slog.Debug("Rejected session", "error", err)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		if time.Now().After(sess.ExpiresAt) {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set("user_id", sess.UserID)
		c.Set("username", sess.Username)

		c.Next()
	}
}

// CurrentUserID extracts the authenticated user's ID from the gin context
func CurrentUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok
}
