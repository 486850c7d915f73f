package twofactor

import (
	"time"

	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Config holds coordinator policy.
type Config struct {
	TOTP totp.Config

	// BackupCodeCount is the batch size issued at setup and by default on
	// regeneration.
	BackupCodeCount int `env:"TFA_BACKUP_CODE_COUNT" envDefault:"10"`

	// SessionTTL is the lifetime of a trusted-device session.
	SessionTTL time.Duration `env:"TFA_TRUSTED_SESSION_TTL" envDefault:"24h"`

	// SetupTimeout bounds how long a pending setup may wait for confirmation.
	SetupTimeout time.Duration `env:"TFA_SETUP_TIMEOUT" envDefault:"15m"`

	// ReplayGuard rejects a TOTP code from a step already accepted for the user.
	ReplayGuard bool `env:"TFA_REPLAY_GUARD" envDefault:"true"`

	// UserLimit throttles challenge and confirm attempts per user.
	UserLimit ratelimiter.Config `envPrefix:"TFA_USER_LIMIT_"`
}

// DefaultConfig returns the default policy.
func DefaultConfig() Config {
	return Config{
		TOTP:            totp.Config{Issuer: "TwoFactor", QRCodeSize: 256},
		BackupCodeCount: 10,
		SessionTTL:      24 * time.Hour,
		SetupTimeout:    15 * time.Minute,
		ReplayGuard:     true,
		UserLimit: ratelimiter.Config{
			Capacity:       5,
			RefillRate:     1,
			RefillInterval: time.Minute,
		},
	}
}

// NewFromConfig creates a Coordinator with the codec and policy from cfg.
// The attempt limiter is not built here because its store is a deployment
// choice; pass WithLimiter.
func NewFromConfig(cfg Config, users UserStore, sealer SecretSealer, codes BackupCodes, sessions TrustedSessions, opts ...Option) (*Coordinator, error) {
	codec, err := totp.NewCodecFromConfig(cfg.TOTP)
	if err != nil {
		return nil, err
	}
	return New(users, sealer, codes, sessions, append([]Option{WithConfig(cfg), WithCodec(codec)}, opts...)...)
}
