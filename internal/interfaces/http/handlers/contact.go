// internal/interfaces/http/handlers/contact.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/domain/contact"
	"github.com/sirupsen/logrus"
)

// ContactSubmitter stores a contact form
type ContactSubmitter interface {
	Submit(ctx context.Context, form contact.Form) (*contact.Message, error)
}

// ContactHandler handles the contact form
type ContactHandler struct {
	contacts ContactSubmitter
	config   *config.Config
	logger   logrus.FieldLogger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts ContactSubmitter, cfg *config.Config, logger logrus.FieldLogger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		config:   cfg,
		logger:   logger,
	}
}

// ShowContact handles GET /contact
func (h *ContactHandler) ShowContact(c *gin.Context) {
	render(c, http.StatusOK, "contact.html", "Contact Us", gin.H{
		"Company": h.config.Company,
	})
}

// SubmitContact handles POST /contact. Failures are only logged; the visitor
// always lands on the confirmation page.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	log := requestLogger(c, h.logger)

	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		log.WithError(err).Info("Unreadable contact form")
	} else if _, err := h.contacts.Submit(c.Request.Context(), form); err != nil {
		log.WithError(err).Warn("Contact message not stored")
	}

	c.Redirect(http.StatusSeeOther, "/contact-success")
}

// ContactSuccess handles GET /contact-success
func (h *ContactHandler) ContactSuccess(c *gin.Context) {
	render(c, http.StatusOK, "contact_success.html", "Message Sent", nil)
}
