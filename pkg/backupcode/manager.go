package backupcode

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/sanitizer"
)

// Manager issues and redeems single-use backup codes.
type Manager struct {
	store  Store
	hasher Hasher
	length int
	rand   io.Reader
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithHasher sets the code hasher. Defaults to SHA256Hasher.
func WithHasher(h Hasher) Option {
	return func(m *Manager) {
		if h != nil {
			m.hasher = h
		}
	}
}

// WithLength sets the code length. Values below 6 are ignored.
func WithLength(n int) Option {
	return func(m *Manager) {
		if n >= 6 {
			m.length = n
		}
	}
}

// WithRandReader overrides the entropy source.
func WithRandReader(r io.Reader) Option {
	return func(m *Manager) {
		if r != nil {
			m.rand = r
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		hasher: SHA256Hasher{},
		length: DefaultLength,
		rand:   rand.Reader,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate issues count fresh codes for the user, replacing every unused
// code issued earlier. The plaintext codes are returned once for display.
func (m *Manager) Generate(ctx context.Context, userID uuid.UUID, count int) ([]string, error) {
	if count < 1 || count > MaxCount {
		return nil, ErrInvalidCount
	}

	now := m.now()
	plain := make([]string, 0, count)
	records := make([]Code, 0, count)
	seen := make(map[string]struct{}, count)

	for len(plain) < count {
		code, err := m.randomCode()
		if err != nil {
			return nil, errors.Join(ErrFailedToGenerate, err)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		hash, err := m.hasher.Hash(userID, code)
		if err != nil {
			return nil, errors.Join(ErrFailedToHash, err)
		}

		plain = append(plain, code)
		records = append(records, Code{
			ID:        uuid.New(),
			UserID:    userID,
			Hash:      hash,
			CreatedAt: now,
		})
	}

	if err := m.store.Replace(ctx, userID, records); err != nil {
		return nil, errors.Join(ErrFailedToStore, err)
	}

	m.logger.InfoContext(ctx, "backup codes generated",
		logger.UserID(userID),
		slog.Int("count", count),
		logger.Component("backupcode"),
	)

	return plain, nil
}

// Consume redeems a code. It returns false both for unknown codes and for
// codes already used; callers cannot tell the two apart. A malformed code
// yields ErrInvalidCode without touching the store.
func (m *Manager) Consume(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	code, ok := m.Normalize(code)
	if !ok {
		return false, ErrInvalidCode
	}

	hash, err := m.hasher.Hash(userID, code)
	if err != nil {
		return false, errors.Join(ErrFailedToHash, err)
	}

	consumed, err := m.store.Consume(ctx, userID, hash, m.now())
	if err != nil {
		return false, errors.Join(ErrFailedToConsume, err)
	}

	if consumed {
		m.logger.InfoContext(ctx, "backup code consumed",
			logger.UserID(userID),
			logger.Component("backupcode"),
		)
	}
	return consumed, nil
}

// Remaining returns the number of unused codes.
func (m *Manager) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := m.store.CountUnused(ctx, userID)
	if err != nil {
		return 0, errors.Join(ErrFailedToCount, err)
	}
	return n, nil
}

// DeleteAll removes every code of the user.
func (m *Manager) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if err := m.store.DeleteAll(ctx, userID); err != nil {
		return errors.Join(ErrFailedToDelete, err)
	}
	return nil
}

// Normalize canonicalizes user input and reports whether it has the shape of
// a code issued by this manager.
func (m *Manager) Normalize(code string) (string, bool) {
	if len(code) > 4*m.length {
		return "", false
	}
	code = sanitizer.OneTimeCode(code)
	if len(code) != m.length {
		return "", false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return "", false
		}
	}
	return code, true
}

func (m *Manager) randomCode() (string, error) {
	buf := make([]byte, m.length)
	if _, err := io.ReadFull(m.rand, buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = Alphabet[b&0x1f]
	}
	return string(buf), nil
}
