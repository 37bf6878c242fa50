// internal/domain/contact/entity.go
package contact

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// MaxMessageLength bounds what the contact form stores
const MaxMessageLength = 5000

var (
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidEmail    = errors.New("a valid email is required")
	ErrMessageRequired = errors.New("message is required")
	ErrMessageTooLong  = errors.New("message is too long")
)

// Message is one submission of the contact form
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Email     string    `json:"email" gorm:"size:320;not null;index"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "contact_messages"
}

// Form is what the contact page posts
type Form struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Message string `form:"message"`
}

// Normalize trims surrounding whitespace from every field
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate checks a normalized form
func (f Form) Validate() error {
	if f.Name == "" {
		return ErrNameRequired
	}
	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		return ErrInvalidEmail
	}
	if f.Message == "" {
		return ErrMessageRequired
	}
	if len(f.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}
