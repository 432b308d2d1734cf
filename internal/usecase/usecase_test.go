package usecase_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"testing"

	"go-contactform-backend/internal/composer"
	"go-contactform-backend/internal/domain"
	"go-contactform-backend/internal/usecase"
	"go-contactform-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// Mock Transport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(msg domain.MessageDescriptor) error {
	return m.Called(msg).Error(0)
}

func submission() *domain.SubmittedFields {
	return &domain.SubmittedFields{
		Name:        "Jane",
		LastName:    "Doe",
		PhoneNumber: "+15550100",
		Email:       "jane@example.com",
		Title:       "Hello",
		Body:        "I would like to know more about your services.",
	}
}

func TestSendContactMessage(t *testing.T) {
	t.Run("Should send a valid submission through the transport", func(t *testing.T) {
		transport := new(MockTransport)
		transport.On("Send", mock.AnythingOfType("domain.MessageDescriptor")).Return(nil).Run(func(args mock.Arguments) {
			msg := args.Get(0).(domain.MessageDescriptor)
			assert.Equal(t, []string{"managers@example.com"}, msg.Recipients)
			assert.Contains(t, msg.Subject, "Hello")
			assert.Contains(t, msg.Body, "know more about your services")
		})

		uc := usecase.NewContactUsecase(composer.Config{
			Recipients: []string{"managers@example.com"},
			SiteName:   "example.com",
			Transport:  transport,
		})

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		err := uc.SendContactMessage(context.Background(), req, submission())
		require.NoError(t, err)
		transport.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Should return field errors without touching the transport", func(t *testing.T) {
		transport := new(MockTransport)
		uc := usecase.NewContactUsecase(composer.Config{
			Recipients: []string{"managers@example.com"},
			Transport:  transport,
		})

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		err := uc.SendContactMessage(context.Background(), req, &domain.SubmittedFields{Name: "Jane"})

		var vf *domain.ValidationFailure
		require.ErrorAs(t, err, &vf)
		assert.True(t, vf.Fields.Has("email"))
		transport.AssertNotCalled(t, "Send")
	})

	t.Run("Should propagate transport failures", func(t *testing.T) {
		transport := new(MockTransport)
		transport.On("Send", mock.Anything).Return(errors.New("relay refused"))

		uc := usecase.NewContactUsecase(composer.Config{
			Recipients: []string{"managers@example.com"},
			Transport:  transport,
		})

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		err := uc.SendContactMessage(context.Background(), req, submission())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "relay refused")
	})

	t.Run("Should fail with a configuration error when no recipients are set", func(t *testing.T) {
		uc := usecase.NewContactUsecase(composer.Config{})

		req := httptest.NewRequest("POST", "/v1/contact", nil)
		err := uc.SendContactMessage(context.Background(), req, submission())

		var cfgErr *composer.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}
