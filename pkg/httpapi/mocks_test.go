package httpapi_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) BeginSetup(ctx context.Context, userID uuid.UUID, accountLabel string) (*twofactor.Setup, error) {
	args := m.Called(ctx, userID, accountLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactor.Setup), args.Error(1)
}

func (m *MockService) ConfirmSetup(ctx context.Context, userID uuid.UUID, secret totp.Secret, code string) (bool, error) {
	args := m.Called(ctx, userID, secret.Reveal(), code)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) Challenge(ctx context.Context, userID uuid.UUID, ch twofactor.Challenge, trustDevice bool) (*twofactor.ChallengeResult, error) {
	args := m.Called(ctx, userID, ch, trustDevice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactor.ChallengeResult), args.Error(1)
}

func (m *MockService) Disable(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockService) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, count int) ([]string, error) {
	args := m.Called(ctx, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockService) ListSessions(ctx context.Context, userID uuid.UUID) ([]trustedsession.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trustedsession.Session), args.Error(1)
}

func (m *MockService) VerifySession(ctx context.Context, token string) (*trustedsession.Verification, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trustedsession.Verification), args.Error(1)
}

func (m *MockService) Status(ctx context.Context, userID uuid.UUID) (*twofactor.StatusInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactor.StatusInfo), args.Error(1)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (*ratelimiter.Result, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ratelimiter.Result), args.Error(1)
}

func (m *MockLimiter) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
