// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/healthy-eats/storefront/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrDisabled is returned when mail delivery is switched off
var ErrDisabled = errors.New("email delivery is disabled")

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles all email operations
type EmailService struct {
	config    *config.Config
	logger    logrus.FieldLogger
	templates map[EmailType]*template.Template
	send      sendFunc
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger logrus.FieldLogger) *EmailService {
	return &EmailService{
		config: cfg,
		logger: logger,
		templates: map[EmailType]*template.Template{
			EmailTypeContactNotification: template.Must(template.New(string(EmailTypeContactNotification)).Parse(contactNotificationTemplate)),
		},
		send: smtp.SendMail,
	}
}

// SendEmail delivers email over SMTP
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if !s.config.Email.Enabled {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(email.To) == 0 {
		return fmt.Errorf("email %q has no recipients", email.Subject)
	}

	if err := s.sendSMTPEmail(email); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"type":       email.Type,
		"recipients": len(email.To),
	}).Info("📧 Email sent")
	return nil
}

// SendContactNotification tells the shop inbox about a new contact message
func (s *EmailService) SendContactNotification(ctx context.Context, data ContactNotificationData) error {
	data.EmailTemplateData = GetBaseTemplateData(s.config.Company.Name)

	htmlContent, err := s.renderTemplate(EmailTypeContactNotification, data)
	if err != nil {
		return err
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{s.config.Email.ContactInbox},
		ReplyTo:     data.Email,
		Subject:     fmt.Sprintf("New contact message from %s", data.Name),
		HTMLContent: htmlContent,
		Type:        EmailTypeContactNotification,
	})
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(emailType EmailType, data interface{}) (string, error) {
	tmpl, exists := s.templates[emailType]
	if !exists {
		return "", fmt.Errorf("template %s not found", emailType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", emailType, err)
	}

	return buf.String(), nil
}

const contactNotificationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #15803d;">New contact message</h1>
        <p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
        <p><strong>Received:</strong> {{.ReceivedAt.Format "2006-01-02 15:04 MST"}}</p>
        <p><strong>Reference:</strong> #{{.MessageID}}</p>
        <hr>
        <p style="white-space: pre-wrap;">{{.Message}}</p>
        <hr>
        <p style="font-size: 12px; color: #666;">
            © {{.Year}} {{.SiteName}}
        </p>
    </div>
</body>
</html>`
