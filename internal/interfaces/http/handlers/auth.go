// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/guard"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

const (
	errLoginFailed      = "Invalid credentials or server error."
	errRegisterFailed   = "Registration failed. Try another email."
	errPasswordMismatch = "Passwords do not match."
)

// LoginRequest is the login form
type LoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	From     string `form:"from"`
}

// RegisterRequest is the register form
type RegisterRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Confirm  string `form:"confirm"`
	From     string `form:"from"`
}

// AuthHandler handles the login page and the session forms
type AuthHandler struct {
	logger logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// ShowLogin handles GET /login?tab=login|register&from=<path>
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.renderForm(c, http.StatusOK, c.Query("tab"), c.Query("from"), "", "")
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, http.StatusBadRequest, "login", c.PostForm("from"), c.PostForm("email"), errLoginFailed)
		return
	}

	if err := middleware.GetApp(c).Session.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		requestLogger(c, h.logger).WithError(err).Info("Login failed")
		h.renderForm(c, http.StatusUnauthorized, "login", req.From, req.Email, errLoginFailed)
		return
	}

	c.Redirect(http.StatusSeeOther, guard.SafeReturnPath(req.From))
}

// Register handles POST /register. The confirmation is checked here and
// never reaches the backend.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, http.StatusBadRequest, "register", c.PostForm("from"), c.PostForm("email"), errRegisterFailed)
		return
	}

	if req.Password != req.Confirm {
		h.renderForm(c, http.StatusBadRequest, "register", req.From, req.Email, errPasswordMismatch)
		return
	}

	if err := middleware.GetApp(c).Session.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		requestLogger(c, h.logger).WithError(err).Info("Registration failed")
		h.renderForm(c, http.StatusBadRequest, "register", req.From, req.Email, errRegisterFailed)
		return
	}

	c.Redirect(http.StatusSeeOther, guard.SafeReturnPath(req.From))
}

// Logout handles POST /logout. The visitor lands on the catalog whatever the
// backend answered; a failed logout keeps the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.GetApp(c).Session.Logout(c.Request.Context()); err != nil {
		requestLogger(c, h.logger).WithError(err).Warn("Logout failed, session kept")
	}
	c.Redirect(http.StatusSeeOther, guard.DefaultReturnPath)
}

func (h *AuthHandler) renderForm(c *gin.Context, status int, tab, from, email, message string) {
	if tab != "register" {
		tab = "login"
	}
	render(c, status, "login.html", "Login", gin.H{
		"Tab":   tab,
		"From":  guard.SafeReturnPath(from),
		"Email": email,
		"Error": message,
	})
}
