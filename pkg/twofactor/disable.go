package twofactor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
	"github.com/dmitrymomot/twofactor/pkg/logger"
)

// Disable turns the second factor off. The flip to disabled is one
// conditional write and is kept even when the follow-up removal of trusted
// sessions and backup codes fails; in that case ErrCascadeIncomplete is
// returned and Reconcile finishes the removal later.
func (c *Coordinator) Disable(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrInvalidInput
	}

	st, err := c.loadState(ctx, userID)
	if err != nil {
		c.metrics.disable(outcomeError)
		return err
	}

	err = transition(ctx, st, eventDisable, func(ctx context.Context) error {
		ok, err := c.users.Disable(ctx, userID)
		if err != nil {
			return errors.Join(ErrFailedToSaveState, err)
		}
		if !ok {
			return ErrNotEnabled
		}
		return nil
	})
	if err != nil {
		c.metrics.disable(outcomeFor(err))
		return err
	}

	c.logger.InfoContext(ctx, "two-factor disabled",
		logger.UserID(userID),
		logger.Event("disable"),
		logger.Component("twofactor"),
	)
	c.notify(ctx, EventDisabled, userID, 0)

	if err := c.cascade(ctx, userID); err != nil {
		c.metrics.disable(outcomeError)
		c.logger.ErrorContext(ctx, "disable cascade incomplete",
			logger.UserID(userID),
			logger.Error(err),
			logger.Component("twofactor"),
		)
		return err
	}

	c.metrics.disable(outcomeSuccess)
	return nil
}

// cascade removes everything that hangs off an enabled second factor and
// then clears the cascade flag. The flag stays set on any failure.
func (c *Coordinator) cascade(ctx context.Context, userID uuid.UUID) error {
	var errs []error
	if _, err := c.sessions.RevokeAll(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	if err := c.codes.DeleteAll(ctx, userID); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		if err := c.users.ClearCascade(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrCascadeIncomplete}, errs...)...)
	}
	return nil
}

// Reconcile finishes up to limit incomplete disable cascades and returns how
// many completed.
func (c *Coordinator) Reconcile(ctx context.Context, limit int) (int, error) {
	ids, err := c.users.ListCascadePending(ctx, limit)
	if err != nil {
		return 0, errors.Join(ErrFailedToLoadState, err)
	}

	done := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		// The user may have finished the cascade through a new setup since
		// the listing; never touch codes or sessions of a newer setup.
		st, err := c.loadState(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !st.CascadePending || st.Status() != StatusDisabled {
			continue
		}
		if err := c.cascade(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		done++
	}

	c.metrics.reconcile(done)
	if done > 0 {
		c.logger.InfoContext(ctx, "disable cascades reconciled",
			slog.Int("count", done),
			logger.Component("twofactor"),
		)
	}
	return done, errors.Join(errs...)
}

// RegenerateBackupCodes replaces the user's unused backup codes with a fresh
// batch. A count of 0 selects the configured batch size. Enabled state and
// trusted sessions are untouched.
func (c *Coordinator) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, count int) ([]string, error) {
	if userID == uuid.Nil || count < 0 {
		return nil, ErrInvalidInput
	}
	if count == 0 {
		count = c.config.BackupCodeCount
	}

	st, err := c.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !st.Enabled {
		return nil, ErrNotEnabled
	}

	codes, err := c.codes.Generate(ctx, userID, count)
	if err != nil {
		if errors.Is(err, backupcode.ErrInvalidCount) {
			return nil, errors.Join(ErrInvalidInput, err)
		}
		return nil, errors.Join(ErrFailedToGenerate, err)
	}

	c.logger.InfoContext(ctx, "backup codes regenerated",
		logger.UserID(userID),
		slog.Int("count", len(codes)),
		logger.Component("twofactor"),
	)
	c.notify(ctx, EventBackupCodesRegenerated, userID, len(codes))

	return codes, nil
}
