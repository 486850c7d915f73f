package trustedsession

import "time"

// Config holds trusted session configuration.
type Config struct {
	// TTL is the lifetime of a session when the caller passes no TTL.
	TTL time.Duration `env:"TRUSTED_SESSION_TTL" envDefault:"24h"`

	// MaxTTL caps caller-supplied lifetimes.
	MaxTTL time.Duration `env:"TRUSTED_SESSION_MAX_TTL" envDefault:"720h"`
}

// DefaultConfig returns the default trusted session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:    24 * time.Hour,
		MaxTTL: 30 * 24 * time.Hour,
	}
}

// NewFromConfig creates a Manager from cfg. Store and logger come from opts.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}
