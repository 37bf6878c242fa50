// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// ProfileHandler serves the account and order history tabs
type ProfileHandler struct {
	logger logrus.FieldLogger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(logger logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{logger: logger}
}

// GetProfile handles GET /profile?tab=account|orders
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	app := middleware.GetApp(c)
	log := requestLogger(c, h.logger)
	ctx := c.Request.Context()

	data := gin.H{"Tab": "account"}

	if c.Query("tab") == "orders" {
		data["Tab"] = "orders"

		orders, err := app.API.Orders(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to fetch orders")
			orders = nil
		}
		data["Orders"] = order.SortNewestFirst(orders)
	} else {
		// The account tab asks the backend directly; any failure shows the
		// not-logged-in fallback
		account, err := app.API.Me(ctx)
		if err != nil {
			log.WithError(err).Debug("Failed to fetch account details")
			account = nil
		}
		data["Account"] = account
	}

	render(c, http.StatusOK, "profile.html", "My Profile", data)
}
