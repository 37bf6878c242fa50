// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/domain/order"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

const errAddressIncomplete = "Please fill in every address field."

// CheckoutHandler hands the cart over to the external payment page and
// serves the pages the payment provider returns to
type CheckoutHandler struct {
	logger logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{logger: logger}
}

// ShowCheckout handles GET /checkout
func (h *CheckoutHandler) ShowCheckout(c *gin.Context) {
	h.renderCheckout(c, http.StatusOK, order.Address{}, "")
}

// CreateCheckout handles POST /checkout. On success the browser leaves the
// storefront for the payment page.
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	app := middleware.GetApp(c)
	log := requestLogger(c, h.logger)

	var address order.Address
	if err := c.ShouldBind(&address); err != nil {
		h.renderCheckout(c, http.StatusBadRequest, address, errAddressIncomplete)
		return
	}

	req, err := order.NewCheckoutRequest(app.Cart.Cart(), address)
	if errors.Is(err, order.ErrEmptyCheckout) {
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}
	if err != nil {
		h.renderCheckout(c, http.StatusBadRequest, address, errAddressIncomplete)
		return
	}

	session, err := app.API.Checkout(c.Request.Context(), req)
	if err != nil {
		log.WithError(err).Error("Checkout failed")
		c.Redirect(http.StatusSeeOther, "/checkout")
		return
	}

	if !isPaymentURL(session.URL) {
		log.WithField("url", session.URL).Error("Checkout returned an unusable payment URL")
		c.Redirect(http.StatusSeeOther, "/checkout")
		return
	}

	log.WithField("items", len(req.Items)).Info("Checkout session created")
	c.Redirect(http.StatusSeeOther, session.URL)
}

// Success handles GET /success. The cart is cleared unconditionally; the
// payment itself is not verified here.
func (h *CheckoutHandler) Success(c *gin.Context) {
	if err := middleware.GetApp(c).Cart.Clear(c.Request.Context()); err != nil {
		requestLogger(c, h.logger).WithError(err).Warn("Failed to clear cart after payment")
	}
	render(c, http.StatusOK, "success.html", "Payment Successful", nil)
}

func (h *CheckoutHandler) renderCheckout(c *gin.Context, status int, address order.Address, message string) {
	render(c, status, "checkout.html", "Checkout", gin.H{
		"Cart":    middleware.GetApp(c).Cart.Cart(),
		"Address": address,
		"Error":   message,
	})
}

func isPaymentURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
