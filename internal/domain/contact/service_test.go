package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/healthy-eats/storefront/internal/pkg/email"
	"github.com/healthy-eats/storefront/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, msg *Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = 11
	}
	return args.Error(0)
}

// MockNotifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendContactNotification(ctx context.Context, data email.ContactNotificationData) error {
	return m.Called(ctx, data).Error(0)
}

var received = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newService(repo Repository, notifier Notifier) *Service {
	svc := NewService(repo, notifier, logger.Discard())
	svc.now = func() time.Time { return received }
	return svc
}

func TestSubmitStoresAndNotifies(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*contact.Message")).Return(nil)

	notifier := new(MockNotifier)
	notifier.On("SendContactNotification", mock.Anything, email.ContactNotificationData{
		MessageID:  11,
		Name:       "Ada",
		Email:      "ada@example.com",
		Message:    "Hello there",
		ReceivedAt: received,
	}).Return(nil)

	msg, err := newService(repo, notifier).Submit(context.Background(), Form{
		Name:    "  Ada ",
		Email:   "ada@example.com ",
		Message: "\nHello there\n",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(11), msg.ID)
	assert.Equal(t, "Ada", msg.Name)
	assert.Equal(t, received, msg.CreatedAt)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want error
	}{
		{"blank name", Form{Name: " ", Email: "ada@example.com", Message: "hi"}, ErrNameRequired},
		{"bad email", Form{Name: "Ada", Email: "not-an-email", Message: "hi"}, ErrInvalidEmail},
		{"display name email", Form{Name: "Ada", Email: "Ada <ada@example.com>", Message: "hi"}, ErrInvalidEmail},
		{"blank message", Form{Name: "Ada", Email: "ada@example.com", Message: "   "}, ErrMessageRequired},
		{"long message", Form{Name: "Ada", Email: "ada@example.com", Message: strings.Repeat("a", MaxMessageLength+1)}, ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			_, err := newService(repo, nil).Submit(context.Background(), tt.form)
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitRepositoryFailure(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	notifier := new(MockNotifier)

	_, err := newService(repo, notifier).Submit(context.Background(), Form{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	assert.Error(t, err)
	notifier.AssertNotCalled(t, "SendContactNotification", mock.Anything, mock.Anything)
}

func TestSubmitNotificationFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier := new(MockNotifier)
	notifier.On("SendContactNotification", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	msg, err := newService(repo, notifier).Submit(context.Background(), Form{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, uint(11), msg.ID)
}

func TestSubmitWithoutNotifier(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := newService(repo, nil).Submit(context.Background(), Form{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	assert.NoError(t, err)
}
