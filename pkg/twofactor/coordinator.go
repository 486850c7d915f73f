package twofactor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

// SecretSealer encrypts TOTP secrets at rest. *secrets.Sealer implements it.
type SecretSealer interface {
	Seal(scope string, plaintext []byte) ([]byte, error)
	Open(scope string, ciphertext []byte) ([]byte, error)
}

// BackupCodes is the recovery-code service. *backupcode.Manager implements it.
type BackupCodes interface {
	Generate(ctx context.Context, userID uuid.UUID, count int) ([]string, error)
	Consume(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	Remaining(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

// TrustedSessions is the trusted-device service. *trustedsession.Manager
// implements it.
type TrustedSessions interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration, meta trustedsession.Meta) (string, *trustedsession.Session, error)
	Verify(ctx context.Context, token string) (*trustedsession.Verification, error)
	List(ctx context.Context, userID uuid.UUID) ([]trustedsession.Session, error)
	RevokeAll(ctx context.Context, userID uuid.UUID) (int, error)
	SweepExpired(ctx context.Context) (int, error)
}

// AttemptLimiter throttles verification attempts. *ratelimiter.Bucket
// implements it.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (*ratelimiter.Result, error)
	Reset(ctx context.Context, key string) error
}

// Coordinator orchestrates setup, challenge and disable of the second factor.
// It holds no per-user state; everything durable lives in the stores.
type Coordinator struct {
	users    UserStore
	sealer   SecretSealer
	codes    BackupCodes
	sessions TrustedSessions

	codec    *totp.Codec
	verifier *totp.Verifier
	limiter  AttemptLimiter
	notifier Notifier
	metrics  *Metrics
	config   Config
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Coordinator over the given stores and services.
func New(users UserStore, sealer SecretSealer, codes BackupCodes, sessions TrustedSessions, opts ...Option) (*Coordinator, error) {
	if users == nil || sealer == nil || codes == nil || sessions == nil {
		return nil, ErrMissingDependency
	}

	c := &Coordinator{
		users:    users,
		sealer:   sealer,
		codes:    codes,
		sessions: sessions,
		verifier: totp.NewVerifier(),
		notifier: nopNotifier{},
		config:   DefaultConfig(),
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.codec == nil {
		codec, err := totp.NewCodecFromConfig(c.config.TOTP)
		if err != nil {
			return nil, err
		}
		c.codec = codec
	}

	return c, nil
}

func secretScope(userID uuid.UUID) string {
	return "totp:" + userID.String()
}

func (c *Coordinator) loadState(ctx context.Context, userID uuid.UUID) (*State, error) {
	st, err := c.users.GetState(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadState, err)
	}
	return st, nil
}

// throttle spends one attempt from the user's budget. A limiter failure
// denies the attempt.
func (c *Coordinator) throttle(ctx context.Context, userID uuid.UUID) error {
	if c.limiter == nil {
		return nil
	}

	res, err := c.limiter.Allow(ctx, userID.String())
	if err != nil {
		return errors.Join(ErrThrottleUnavailable, err)
	}
	if !res.Allowed() {
		return &AttemptsExceededError{RetryAfter: res.RetryAfter()}
	}
	return nil
}

// forgive returns the user's attempt budget after a success.
func (c *Coordinator) forgive(ctx context.Context, userID uuid.UUID) {
	if c.limiter == nil {
		return
	}
	if err := c.limiter.Reset(ctx, userID.String()); err != nil {
		c.logger.WarnContext(ctx, "failed to reset attempt limiter",
			logger.UserID(userID),
			logger.Error(err),
			logger.Component("twofactor"),
		)
	}
}

func (c *Coordinator) notify(ctx context.Context, kind EventKind, userID uuid.UUID, remaining int) {
	n := Notification{
		Kind:                 kind,
		UserID:               userID,
		At:                   c.now(),
		RemainingBackupCodes: remaining,
	}
	if err := c.notifier.Notify(ctx, n); err != nil {
		c.logger.WarnContext(ctx, "security notification failed",
			logger.UserID(userID),
			logger.Event(string(kind)),
			logger.Error(err),
			logger.Component("twofactor"),
		)
	}
}

// openSecret decrypts the stored secret of an enabled user. The caller must
// Zero the result.
func (c *Coordinator) openSecret(st *State) (totp.Secret, error) {
	if len(st.Secret) == 0 {
		return totp.Secret{}, ErrMissingSecret
	}

	plain, err := c.sealer.Open(secretScope(st.UserID), st.Secret)
	if err != nil {
		return totp.Secret{}, errors.Join(ErrFailedToOpenSecret, err)
	}
	defer clear(plain)

	secret, err := totp.ParseSecret(string(plain))
	if err != nil {
		return totp.Secret{}, errors.Join(ErrFailedToOpenSecret, err)
	}
	return secret, nil
}
