package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestService(enabled bool) (*EmailService, *[]sentMail) {
	cfg := &config.Config{
		Email: config.EmailConfig{
			Enabled:      enabled,
			FromEmail:    "noreply@healthyeats.example",
			FromName:     "Healthy Eats",
			ContactInbox: "hello@healthyeats.example",
			SMTPHost:     "smtp.healthyeats.example",
			SMTPPort:     587,
		},
		Company: config.CompanyConfig{Name: "Healthy Eats"},
	}

	var sent []sentMail
	svc := NewEmailService(cfg, logger.Discard())
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
		return nil
	}
	return svc, &sent
}

func TestSendContactNotification(t *testing.T) {
	svc, sent := newTestService(true)

	err := svc.SendContactNotification(context.Background(), ContactNotificationData{
		MessageID:  7,
		Name:       "Ada",
		Email:      "ada@example.com",
		Message:    "Do you deliver <kale> on Sundays?",
		ReceivedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.healthyeats.example:587", mail.addr)
	assert.Nil(t, mail.auth, "no username means no auth")
	assert.Equal(t, "noreply@healthyeats.example", mail.from)
	assert.Equal(t, []string{"hello@healthyeats.example"}, mail.to)
	assert.Contains(t, mail.msg, "From: Healthy Eats <noreply@healthyeats.example>\r\n")
	assert.Contains(t, mail.msg, "Subject: New contact message from Ada\r\n")
	assert.Contains(t, mail.msg, "Reply-To: ada@example.com\r\n")
	assert.Contains(t, mail.msg, "Do you deliver &lt;kale&gt; on Sundays?")
	assert.Contains(t, mail.msg, "#7")
}

func TestSendEmailDisabled(t *testing.T) {
	svc, sent := newTestService(false)

	err := svc.SendEmail(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "hi"})
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, *sent)
}

func TestSendEmailRequiresRecipients(t *testing.T) {
	svc, _ := newTestService(true)

	err := svc.SendEmail(context.Background(), &Email{Subject: "hi"})
	assert.Error(t, err)
}

func TestSendEmailWrapsTransportError(t *testing.T) {
	svc, _ := newTestService(true)
	boom := errors.New("connection refused")
	svc.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := svc.SendEmail(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "hi"})
	assert.ErrorIs(t, err, boom)
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	msg := string(buildMessage("", "noreply@healthyeats.example", &Email{
		To:      []string{"hello@healthyeats.example"},
		Subject: "hi\r\nBcc: victim@example.com",
	}))

	assert.Contains(t, msg, "From: noreply@healthyeats.example\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
}
