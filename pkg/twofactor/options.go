package twofactor

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConfig replaces the policy.
func WithConfig(cfg Config) Option {
	return func(c *Coordinator) {
		c.config = cfg
	}
}

// WithCodec sets the secret codec.
func WithCodec(codec *totp.Codec) Option {
	return func(c *Coordinator) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLimiter enables per-user attempt throttling.
func WithLimiter(l AttemptLimiter) Option {
	return func(c *Coordinator) {
		c.limiter = l
	}
}

// WithNotifier sets the security notification sink.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}
