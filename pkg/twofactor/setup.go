package twofactor

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

const maxLabelLength = 254

// Setup is returned by BeginSetup for display to the user. Secret and
// BackupCodes are shown once and must not be stored by the caller.
type Setup struct {
	Secret          totp.Secret
	ProvisioningURI string
	QRCode          string // data:image/png;base64 URI
	BackupCodes     []string
	ExpiresAt       time.Time
}

// BeginSetup issues a candidate secret and a fresh backup-code batch and
// marks the user as pending. Nothing is enabled until ConfirmSetup. Calling
// it again while pending restarts the setup.
func (c *Coordinator) BeginSetup(ctx context.Context, userID uuid.UUID, accountLabel string) (*Setup, error) {
	accountLabel = strings.TrimSpace(accountLabel)
	if userID == uuid.Nil || accountLabel == "" || utf8.RuneCountInString(accountLabel) > maxLabelLength {
		return nil, ErrInvalidInput
	}

	st, err := c.loadState(ctx, userID)
	if err != nil {
		c.metrics.setup("begin", outcomeError)
		return nil, err
	}

	// Leftovers of an earlier disable must be gone before a new batch of
	// codes exists, or a later reconcile would delete the new batch.
	if st.CascadePending {
		if err := c.cascade(ctx, userID); err != nil {
			c.metrics.setup("begin", outcomeError)
			return nil, err
		}
		c.logger.InfoContext(ctx, "pending disable cascade finished before setup",
			logger.UserID(userID),
			logger.Component("twofactor"),
		)
	}

	now := c.now()
	setup := &Setup{ExpiresAt: now.Add(c.config.SetupTimeout)}

	err = transition(ctx, st, eventBeginSetup, func(ctx context.Context) error {
		secret, uri, err := c.codec.GenerateSecret(accountLabel)
		if err != nil {
			return errors.Join(ErrFailedToGenerate, err)
		}
		qr, err := c.codec.QRCodeDataURI(uri)
		if err != nil {
			secret.Zero()
			return errors.Join(ErrFailedToGenerate, err)
		}

		ok, err := c.users.MarkPending(ctx, userID, now)
		if err != nil {
			secret.Zero()
			return errors.Join(ErrFailedToSaveState, err)
		}
		if !ok {
			secret.Zero()
			return ErrAlreadyEnabled
		}

		codes, err := c.codes.Generate(ctx, userID, c.config.BackupCodeCount)
		if err != nil {
			secret.Zero()
			return errors.Join(ErrFailedToGenerate, err)
		}

		setup.Secret = secret
		setup.ProvisioningURI = uri
		setup.QRCode = qr
		setup.BackupCodes = codes
		return nil
	})
	if err != nil {
		c.metrics.setup("begin", outcomeFor(err))
		return nil, err
	}

	c.metrics.setup("begin", outcomeSuccess)
	c.logger.InfoContext(ctx, "two-factor setup started",
		logger.UserID(userID),
		logger.Event("begin_setup"),
		logger.Component("twofactor"),
	)

	return setup, nil
}

// ConfirmSetup checks code against the candidate secret from BeginSetup.
// On success the secret is sealed and stored and 2FA becomes enabled. A
// wrong code returns false and leaves the setup pending.
func (c *Coordinator) ConfirmSetup(ctx context.Context, userID uuid.UUID, secret totp.Secret, code string) (bool, error) {
	if userID == uuid.Nil {
		return false, ErrInvalidInput
	}
	if secret.IsZero() {
		return false, ErrMissingSecret
	}
	if _, ok := totp.NormalizeCode(code); !ok {
		c.metrics.setup("confirm", outcomeInvalid)
		return false, ErrInvalidInput
	}

	if err := c.throttle(ctx, userID); err != nil {
		c.metrics.setup("confirm", outcomeFor(err))
		return false, err
	}

	st, err := c.loadState(ctx, userID)
	if err != nil {
		c.metrics.setup("confirm", outcomeError)
		return false, err
	}

	now := c.now()
	if st.Status() == StatusPendingSetup && c.config.SetupTimeout > 0 && now.Sub(*st.PendingSince) > c.config.SetupTimeout {
		c.metrics.setup("confirm", outcomeInvalid)
		return false, ErrSetupExpired
	}

	err = transition(ctx, st, eventConfirm, func(ctx context.Context) error {
		step, ok := c.verifier.Match(secret, code, now)
		if !ok {
			return errWrongCode
		}

		plain := []byte(secret.Reveal())
		sealed, err := c.sealer.Seal(secretScope(userID), plain)
		clear(plain)
		if err != nil {
			return errors.Join(ErrFailedToSealSecret, err)
		}

		applied, err := c.users.Enable(ctx, userID, sealed, now, step)
		if err != nil {
			return errors.Join(ErrFailedToSaveState, err)
		}
		if !applied {
			return ErrAlreadyEnabled
		}
		return nil
	})

	switch {
	case errors.Is(err, errWrongCode):
		c.metrics.setup("confirm", outcomeFailure)
		c.logger.InfoContext(ctx, "two-factor setup code rejected",
			logger.UserID(userID),
			logger.Event("confirm_setup"),
			logger.Component("twofactor"),
		)
		return false, nil
	case err != nil:
		c.metrics.setup("confirm", outcomeFor(err))
		return false, err
	}

	c.forgive(ctx, userID)
	c.metrics.setup("confirm", outcomeSuccess)
	c.logger.InfoContext(ctx, "two-factor enabled",
		logger.UserID(userID),
		logger.Event("confirm_setup"),
		logger.Component("twofactor"),
	)
	c.notify(ctx, EventEnabled, userID, 0)

	return true, nil
}

// errWrongCode aborts a transition whose proof did not verify. It never
// leaves the package.
var errWrongCode = errors.New("twofactor: wrong code")

// outcomeFor maps an error onto a metrics outcome label.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrTooManyAttempts):
		return outcomeThrottled
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMissingSecret),
		errors.Is(err, ErrNotEnabled),
		errors.Is(err, ErrAlreadyEnabled),
		errors.Is(err, ErrSetupNotStarted),
		errors.Is(err, ErrSetupExpired):
		return outcomeInvalid
	default:
		return outcomeError
	}
}
