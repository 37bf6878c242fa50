// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeContactNotification EmailType = "contact_notification"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	ReplyTo     string    `json:"reply_to,omitempty"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName string `json:"site_name"`
	Year     int    `json:"year"`
}

// ContactNotificationData describes one message left through the contact form
type ContactNotificationData struct {
	EmailTemplateData
	MessageID  uint      `json:"message_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// GetBaseTemplateData returns the fields every template shares
func GetBaseTemplateData(siteName string) EmailTemplateData {
	return EmailTemplateData{
		SiteName: siteName,
		Year:     time.Now().Year(),
	}
}
