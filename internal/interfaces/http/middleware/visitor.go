// internal/interfaces/http/middleware/visitor.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/pkg/auth"
	"github.com/healthy-eats/storefront/internal/state"
	"github.com/sirupsen/logrus"
)

const (
	VisitorIDKey = "visitor_id"
	AppKey       = "visitor_app"
	visitorsKey  = "visitor_resolver"
)

// VisitorResolver hands out the App for a visitor id. Touch keeps a visitor
// alive during long requests and reports false once app has been evicted.
type VisitorResolver interface {
	Get(ctx context.Context, visitorID string) (*state.App, error)
	Touch(visitorID string, app *state.App) bool
}

// Visitor identifies the browser by its signed cookie, issuing a fresh one
// when it is missing, tampered with or expired, and attaches the visitor's
// App to the request. A brand new App gets up to Visitor.StartupWait to
// restore its session so the first page already knows who is logged in.
func Visitor(cfg *config.Config, jwtManager *auth.JWTManager, visitors VisitorResolver, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID := ""
		if token, err := c.Cookie(cfg.Visitor.CookieName); err == nil && token != "" {
			claims, err := jwtManager.ValidateVisitorToken(token)
			if err != nil {
				logger.WithError(err).Debug("Rejected visitor cookie")
			} else {
				visitorID = claims.VisitorID
			}
		}

		if visitorID == "" {
			visitorID = auth.NewVisitorID()
			token, err := jwtManager.GenerateVisitorToken(visitorID)
			if err != nil {
				logger.WithError(err).Error("Failed to issue visitor cookie")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Visitor.CookieName, token, int(cfg.JWT.VisitorExpiry/time.Second), "/", "", cfg.Visitor.SecureCookie, true)
		}

		app, err := visitors.Get(c.Request.Context(), visitorID)
		if err != nil {
			logger.WithError(err).WithField("visitor_id", visitorID).Error("Failed to resolve visitor")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		if cfg.Visitor.StartupWait > 0 {
			timer := time.NewTimer(cfg.Visitor.StartupWait)
			select {
			case <-app.Started():
			case <-timer.C:
			case <-c.Request.Context().Done():
			}
			timer.Stop()
		}

		c.Set(VisitorIDKey, visitorID)
		c.Set(AppKey, app)
		c.Set(visitorsKey, visitors)
		c.Next()
	}
}

// GetApp returns the visitor's App attached by Visitor
func GetApp(c *gin.Context) *state.App {
	if app, ok := c.Get(AppKey); ok {
		return app.(*state.App)
	}
	return nil
}

// GetVisitorID returns the visitor id attached by Visitor
func GetVisitorID(c *gin.Context) string {
	return c.GetString(VisitorIDKey)
}

// TouchVisitor marks the request's visitor as active. It returns false when the
// App attached to the request is no longer the visitor's live App.
func TouchVisitor(c *gin.Context) bool {
	visitors, ok := c.Get(visitorsKey)
	if !ok {
		return false
	}
	return visitors.(VisitorResolver).Touch(GetVisitorID(c), GetApp(c))
}
