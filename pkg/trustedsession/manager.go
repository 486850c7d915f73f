package trustedsession

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/logger"
)

// Manager issues and checks trusted-device tokens.
type Manager struct {
	store  Store
	config Config
	now    func() time.Time
	rand   io.Reader
	logger *slog.Logger
}

// New creates a Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		now:    time.Now,
		rand:   rand.Reader,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}

	return m
}

// Create issues a session for the user and returns the raw token together
// with the stored record. A zero ttl selects the configured default.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration, meta Meta) (string, *Session, error) {
	if userID == uuid.Nil {
		return "", nil, ErrInvalidSession
	}
	if ttl == 0 {
		ttl = m.config.TTL
	}
	if ttl <= 0 || (m.config.MaxTTL > 0 && ttl > m.config.MaxTTL) {
		return "", nil, ErrInvalidTTL
	}

	raw := make([]byte, TokenSize)
	if _, err := io.ReadFull(m.rand, raw); err != nil {
		return "", nil, errors.Join(ErrTokenGeneration, err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := m.now()
	session := &Session{
		ID:        HashToken(token),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
	}

	if err := m.store.Create(ctx, session); err != nil {
		return "", nil, errors.Join(ErrFailedToCreate, err)
	}

	m.logger.InfoContext(ctx, "trusted session created",
		logger.UserID(userID),
		slog.Time("expires_at", session.ExpiresAt),
		logger.Component("trustedsession"),
	)

	return token, session, nil
}

// Verify looks up a presented token. It returns nil when the token is
// unknown, and a Verification with Valid=false when it exists but has
// expired. Expiry is judged against the clock, not against whether a sweep
// has run.
func (m *Manager) Verify(ctx context.Context, token string) (*Verification, error) {
	if !wellFormed(token) {
		return nil, nil
	}

	session, err := m.store.Get(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, errors.Join(ErrFailedToLoad, err)
	}

	return &Verification{
		UserID:    session.UserID,
		Valid:     !session.IsExpired(m.now()),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// List returns the user's sessions that have not expired.
func (m *Manager) List(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	all, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}

	now := m.now()
	live := make([]Session, 0, len(all))
	for _, s := range all {
		if !s.IsExpired(now) {
			live = append(live, s)
		}
	}
	return live, nil
}

// RevokeAll deletes every session the user holds at call time.
func (m *Manager) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := m.store.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, errors.Join(ErrFailedToRevoke, err)
	}

	m.logger.InfoContext(ctx, "trusted sessions revoked",
		logger.UserID(userID),
		slog.Int("count", n),
		logger.Component("trustedsession"),
	)
	return n, nil
}

// SweepExpired deletes expired sessions. Safe to run concurrently and
// repeatedly.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, errors.Join(ErrFailedToSweep, err)
	}

	if n > 0 {
		m.logger.InfoContext(ctx, "expired trusted sessions swept",
			slog.Int("count", n),
			logger.Component("trustedsession"),
		)
	}
	return n, nil
}
