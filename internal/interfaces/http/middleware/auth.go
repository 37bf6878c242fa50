// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/domain/user"
	"github.com/healthy-eats/storefront/internal/guard"
)

const CurrentUserKey = "current_user"

// RequireSession guards session-only pages. While the session is still
// restoring it answers 202 with an empty body and asks the browser to retry
// in a second; without a user it redirects to the login page carrying the
// requested path.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		app := GetApp(c)
		if app == nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		session := app.Session.Snapshot()
		decision := guard.Decide(session.Loading, session.CurrentUser, c.Request.URL.RequestURI())

		switch decision.Outcome {
		case guard.Wait:
			c.Header("Refresh", "1")
			c.Header("Cache-Control", "no-store")
			c.AbortWithStatus(http.StatusAccepted)
		case guard.Redirect:
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			c.Set(CurrentUserKey, session.CurrentUser)
			c.Next()
		}
	}
}

// GetCurrentUser returns the user RequireSession let through
func GetCurrentUser(c *gin.Context) *user.User {
	if u, ok := c.Get(CurrentUserKey); ok {
		return u.(*user.User)
	}
	return nil
}
