package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/email"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  email.SendEmailParams
		wantErr bool
	}{
		{
			name:   "valid html",
			params: email.SendEmailParams{SendTo: "a@example.com", Subject: "hi", BodyHTML: "<p>x</p>"},
		},
		{
			name:   "valid text only",
			params: email.SendEmailParams{SendTo: "a@example.com", Subject: "hi", BodyText: "x"},
		},
		{
			name:    "bad address",
			params:  email.SendEmailParams{SendTo: "nope", Subject: "hi", BodyHTML: "x"},
			wantErr: true,
		},
		{
			name:    "missing subject",
			params:  email.SendEmailParams{SendTo: "a@example.com", Subject: "  ", BodyHTML: "x"},
			wantErr: true,
		},
		{
			name:    "missing body",
			params:  email.SendEmailParams{SendTo: "a@example.com", Subject: "hi"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	_, err := email.NewPostmarkClient(email.Config{SenderEmail: "a@example.com", SupportEmail: "b@example.com"})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewPostmarkClient(email.Config{PostmarkServerToken: "t", SenderEmail: "bad", SupportEmail: "b@example.com"})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	client, err := email.NewPostmarkClient(email.Config{
		PostmarkServerToken: "t",
		SenderEmail:         "a@example.com",
		SupportEmail:        "b@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)

	assert.True(t, email.Config{PostmarkServerToken: "t"}.UsePostmark())
	assert.False(t, email.Config{}.UsePostmark())
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Backup code used",
		BodyHTML: "<p>hello</p>",
		Tag:      "two_factor.backup_code_used",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var jsonFile string
	for _, e := range entries {
		assert.Contains(t, e.Name(), "two_factor.backup_code_used")
		if strings.HasSuffix(e.Name(), ".json") {
			jsonFile = e.Name()
		}
	}
	require.NotEmpty(t, jsonFile)

	raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "user@example.com", meta["send_to"])

	err = sender.SendEmail(context.Background(), email.SendEmailParams{SendTo: "bad"})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestNotifier(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	directory := email.DirectoryFunc(func(_ context.Context, id uuid.UUID) (string, error) {
		if id != userID {
			return "", errors.New("unknown user")
		}
		return "user@example.com", nil
	})

	t.Run("backup code used", func(t *testing.T) {
		t.Parallel()

		sender := &MockSender{}
		sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
			return p.SendTo == "user@example.com" &&
				p.Tag == string(twofactor.EventBackupCodeUsed) &&
				strings.Contains(p.Subject, "Acme") &&
				strings.Contains(p.BodyHTML, "<strong>4</strong>") &&
				strings.Contains(p.BodyText, "Backup codes left: 4")
		})).Return(nil).Once()

		n := email.NewNotifier(sender, directory, "Acme")
		err := n.Notify(context.Background(), twofactor.Notification{
			Kind:                 twofactor.EventBackupCodeUsed,
			UserID:               userID,
			At:                   time.Now(),
			RemainingBackupCodes: 4,
		})
		require.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		t.Parallel()

		sender := &MockSender{}
		n := email.NewNotifier(sender, directory, "")
		err := n.Notify(context.Background(), twofactor.Notification{Kind: twofactor.EventEnabled, UserID: uuid.New()})
		assert.ErrorIs(t, err, email.ErrRecipientNotFound)
		sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("send failure masks the address", func(t *testing.T) {
		t.Parallel()

		sender := &MockSender{}
		sender.On("SendEmail", mock.Anything, mock.Anything).Return(email.ErrFailedToSendEmail).Once()

		n := email.NewNotifier(sender, directory, "Acme")
		err := n.Notify(context.Background(), twofactor.Notification{Kind: twofactor.EventDisabled, UserID: userID, At: time.Now()})
		require.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.Contains(t, err.Error(), "u***@example.com")
		assert.NotContains(t, err.Error(), "user@example.com")
	})

	t.Run("unknown kind ignored", func(t *testing.T) {
		t.Parallel()

		sender := &MockSender{}
		n := email.NewNotifier(sender, directory, "")
		err := n.Notify(context.Background(), twofactor.Notification{Kind: "other", UserID: userID})
		assert.NoError(t, err)
		sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})
}
