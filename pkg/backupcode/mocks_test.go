package backupcode_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
)

// MockStore is a mock implementation of backupcode.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Replace(ctx context.Context, userID uuid.UUID, codes []backupcode.Code) error {
	args := m.Called(ctx, userID, codes)
	return args.Error(0)
}

func (m *MockStore) Consume(ctx context.Context, userID uuid.UUID, hash string, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, hash, usedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CountUnused(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
