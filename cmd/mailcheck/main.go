// cmd/mailcheck/main.go
//
// mailcheck sends a sample contact notification to CONTACT_INBOX so the SMTP
// settings can be verified without submitting the contact form.
package main

import (
	"context"
	"time"

	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/pkg/email"
	"github.com/healthy-eats/storefront/internal/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg)

	if !cfg.Email.Enabled {
		log.Fatal("EMAIL_ENABLED is false, nothing to check")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	emailService := email.NewEmailService(cfg, log)
	err = emailService.SendContactNotification(ctx, email.ContactNotificationData{
		Name:       "Mail check",
		Email:      cfg.Email.FromEmail,
		Message:    "SMTP is working for the Healthy Eats storefront.",
		ReceivedAt: time.Now(),
	})
	if err != nil {
		log.Fatalf("Send failed: %v", err)
	}

	log.Infof("✅ Test notification sent to %s", cfg.Email.ContactInbox)
}
