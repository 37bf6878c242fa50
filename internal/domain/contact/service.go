// internal/domain/contact/service.go
package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/healthy-eats/storefront/internal/pkg/email"
	"github.com/sirupsen/logrus"
)

// Notifier announces a new message to the shop
type Notifier interface {
	SendContactNotification(ctx context.Context, data email.ContactNotificationData) error
}

// Service handles contact form submissions
type Service struct {
	repo     Repository
	notifier Notifier
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewService creates a new contact service. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates, stores and announces a message. A failed notification is
// logged and does not fail the submission once the message is stored.
func (s *Service) Submit(ctx context.Context, form Form) (*Message, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	msg := &Message{
		Name:      form.Name,
		Email:     form.Email,
		Message:   form.Message,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("submit contact message: %w", err)
	}

	log := s.logger.WithField("contact_message_id", msg.ID)
	log.Info("Contact message received")

	if s.notifier == nil {
		return msg, nil
	}

	err := s.notifier.SendContactNotification(ctx, email.ContactNotificationData{
		MessageID:  msg.ID,
		Name:       msg.Name,
		Email:      msg.Email,
		Message:    msg.Message,
		ReceivedAt: msg.CreatedAt,
	})
	switch {
	case errors.Is(err, email.ErrDisabled):
		log.Debug("Contact notification skipped, email disabled")
	case err != nil:
		log.WithError(err).Warn("Failed to send contact notification")
	}

	return msg, nil
}
