package trustedsession_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

// MockStore is a mock implementation of trustedsession.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, session *trustedsession.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, id string) (*trustedsession.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trustedsession.Session), args.Error(1)
}

func (m *MockStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]trustedsession.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trustedsession.Session), args.Error(1)
}

func (m *MockStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}
