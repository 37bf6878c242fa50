// internal/interfaces/http/handlers/page.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/guard"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/healthy-eats/storefront/internal/state"
	"github.com/sirupsen/logrus"
)

// render fills in the chrome every page shares (navigation session state,
// cart badge, footer year) and renders name inside the layout
func render(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Year"] = time.Now().Year()
	data["Session"] = state.Session{}
	data["ItemsCount"] = 0

	if app := middleware.GetApp(c); app != nil {
		data["Session"] = app.Session.Snapshot()
		data["ItemsCount"] = app.Cart.ItemsCount()
	}

	c.HTML(status, name, data)
}

// redirectBack answers a form post by sending the browser to the local path
// it came from
func redirectBack(c *gin.Context, fallback string) {
	target := c.PostForm("return")
	if target == "" {
		target = fallback
	}
	c.Redirect(http.StatusSeeOther, guard.SafeReturnPath(target))
}

// requestLogger tags the logger with the request and visitor ids
func requestLogger(c *gin.Context, logger logrus.FieldLogger) logrus.FieldLogger {
	return logger.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"visitor_id": middleware.GetVisitorID(c),
	})
}

// PageHandler serves the static informational pages
type PageHandler struct {
	config *config.Config
}

// NewPageHandler creates a new page handler
func NewPageHandler(cfg *config.Config) *PageHandler {
	return &PageHandler{config: cfg}
}

// Home handles GET /
func (h *PageHandler) Home(c *gin.Context) {
	render(c, http.StatusOK, "home.html", "", nil)
}

// About handles GET /about
func (h *PageHandler) About(c *gin.Context) {
	render(c, http.StatusOK, "about.html", "About", nil)
}

// Cancel handles GET /cancel
func (h *PageHandler) Cancel(c *gin.Context) {
	render(c, http.StatusOK, "cancel.html", "Payment Failed", nil)
}

// NotFound renders the 404 page
func (h *PageHandler) NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "not_found.html", "Not Found", nil)
}
