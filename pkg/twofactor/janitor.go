package twofactor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/logger"
)

// JanitorConfig controls background maintenance.
type JanitorConfig struct {
	Interval  time.Duration `env:"TFA_JANITOR_INTERVAL" envDefault:"5m"`
	BatchSize int           `env:"TFA_JANITOR_BATCH_SIZE" envDefault:"100"`
}

// Janitor periodically sweeps expired trusted sessions and finishes
// incomplete disable cascades. Several janitors may run against the same
// stores.
type Janitor struct {
	coordinator *Coordinator
	config      JanitorConfig
	logger      *slog.Logger
}

// JanitorOption configures a Janitor.
type JanitorOption func(*Janitor)

// WithJanitorLogger sets a custom logger.
func WithJanitorLogger(l *slog.Logger) JanitorOption {
	return func(j *Janitor) {
		if l != nil {
			j.logger = l
		}
	}
}

// NewJanitor creates a Janitor for c.
func NewJanitor(c *Coordinator, cfg JanitorConfig, opts ...JanitorOption) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	j := &Janitor{
		coordinator: c,
		config:      cfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RunOnce performs one maintenance pass.
func (j *Janitor) RunOnce(ctx context.Context) (swept, reconciled int, err error) {
	swept, sweepErr := j.coordinator.SweepExpiredSessions(ctx)
	reconciled, reconcileErr := j.coordinator.Reconcile(ctx, j.config.BatchSize)
	return swept, reconciled, errors.Join(sweepErr, reconcileErr)
}

// Run performs a pass immediately and then every interval until ctx is
// done. Pass failures are logged and do not stop the loop.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		swept, reconciled, err := j.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			j.logger.ErrorContext(ctx, "janitor pass failed",
				logger.Error(err),
				logger.Component("janitor"),
			)
		} else if swept > 0 || reconciled > 0 {
			j.logger.InfoContext(ctx, "janitor pass completed",
				slog.Int("swept", swept),
				slog.Int("reconciled", reconciled),
				logger.Duration(time.Since(start)),
				logger.Component("janitor"),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
