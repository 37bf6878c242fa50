// cmd/storefront/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/domain/contact"
	"github.com/healthy-eats/storefront/internal/infrastructure/backend"
	"github.com/healthy-eats/storefront/internal/infrastructure/database/postgres"
	"github.com/healthy-eats/storefront/internal/infrastructure/database/redis"
	"github.com/healthy-eats/storefront/internal/interfaces/http"
	"github.com/healthy-eats/storefront/internal/pkg/auth"
	"github.com/healthy-eats/storefront/internal/pkg/email"
	"github.com/healthy-eats/storefront/internal/pkg/logger"
	"github.com/healthy-eats/storefront/internal/pkg/pdf"
	"github.com/healthy-eats/storefront/internal/visitor"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	ctx := context.Background()
	if err := db.Health(ctx); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), log)

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Warnf("Index creation failed: %v", err)
	}

	contacts := contact.NewService(
		contact.NewGormRepository(db.GetDB()),
		email.NewEmailService(cfg, log),
		log,
	)

	visitors := visitor.NewRegistry(
		cfg,
		redis.NewCookieStore(redisClient, cfg.JWT.VisitorExpiry),
		log,
		backend.WithTransport(backend.NewTransport()),
	)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go visitors.Run(sweepCtx)

	server, err := http.NewServer(cfg, http.Dependencies{
		Logger:   log,
		Redis:    redisClient.GetClient(),
		Visitors: visitors,
		JWT:      auth.NewJWTManager(cfg),
		Contacts: contacts,
		Receipts: pdf.NewService(cfg),
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	log.Infof("🥦 Storefront talking to %s", cfg.Backend.BaseURL)
	log.Info("✅ All systems operational!")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Info("✅ Server shutdown completed")
}
