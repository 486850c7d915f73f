package twofactor_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// MockUserStore is a mock implementation of twofactor.UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetState(ctx context.Context, userID uuid.UUID) (*twofactor.State, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactor.State), args.Error(1)
}

func (m *MockUserStore) MarkPending(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) Enable(ctx context.Context, userID uuid.UUID, sealedSecret []byte, at time.Time, step int64) (bool, error) {
	args := m.Called(ctx, userID, sealedSecret, at, step)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) Disable(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) AdvanceStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	args := m.Called(ctx, userID, step)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) ClearCascade(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserStore) ListCascadePending(ctx context.Context, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockTrustedSessions is a mock implementation of twofactor.TrustedSessions.
type MockTrustedSessions struct {
	mock.Mock
}

func (m *MockTrustedSessions) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration, meta trustedsession.Meta) (string, *trustedsession.Session, error) {
	args := m.Called(ctx, userID, ttl, meta)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*trustedsession.Session), args.Error(2)
}

func (m *MockTrustedSessions) Verify(ctx context.Context, token string) (*trustedsession.Verification, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trustedsession.Verification), args.Error(1)
}

func (m *MockTrustedSessions) List(ctx context.Context, userID uuid.UUID) ([]trustedsession.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trustedsession.Session), args.Error(1)
}

func (m *MockTrustedSessions) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTrustedSessions) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockNotifier is a mock implementation of twofactor.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n twofactor.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
