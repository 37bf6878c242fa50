// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/interfaces/http/handlers"
	"github.com/healthy-eats/storefront/internal/interfaces/http/middleware"
	"github.com/healthy-eats/storefront/internal/interfaces/http/routes"
	"github.com/healthy-eats/storefront/internal/interfaces/http/views"
	"github.com/healthy-eats/storefront/internal/pkg/auth"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const maxRequestBytes = 1 << 20

// HealthChecker is a dependency that can report whether it is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies are the long-lived services the server is wired to
type Dependencies struct {
	Logger   *logrus.Logger
	Redis    *redis.Client
	Visitors middleware.VisitorResolver
	JWT      *auth.JWTManager
	Contacts handlers.ContactSubmitter
	Receipts handlers.ReceiptRenderer

	// Checks are run by /health, keyed by component name
	Checks map[string]HealthChecker
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	deps       Dependencies
	logger     *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates the server and registers every route
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		logger:    deps.Logger,
		gin:       gin.New(),
		startedAt: time.Now(),
	}

	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	s.gin.HTMLRender = renderer

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.Infof("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	s.logger.Infof("🛒 Storefront: http://localhost:%s/products", s.config.Server.Port)
	s.logger.Infof("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures the middleware shared by every route
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	if s.deps.Redis != nil {
		s.gin.Use(middleware.RateLimit(s.config, s.deps.Redis, s.logger))
	}
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBytes))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	s.gin.StaticFS("/static", views.Static())

	visitor := middleware.Visitor(s.config, s.deps.JWT, s.deps.Visitors, s.logger)

	pages := s.gin.Group("")
	pages.Use(middleware.Timeout(s.config.Server.RequestTimeout), visitor)

	events := s.gin.Group("")
	events.Use(visitor)

	routes.SetupRoutes(pages, events, routes.Dependencies{
		Config:   s.config,
		Logger:   s.logger,
		Contacts: s.deps.Contacts,
		Receipts: s.deps.Receipts,
	})

	s.gin.NoRoute(handlers.NewPageHandler(s.config).NotFound)
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	for name, check := range s.deps.Checks {
		if err := check.Health(ctx); err != nil {
			s.logger.WithError(err).WithField("component", name).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
