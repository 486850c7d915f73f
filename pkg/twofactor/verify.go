package twofactor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

// Challenge verifies a second-factor proof for an enabled user. Exactly the
// branch matching ch is attempted. When trustDevice is set and the proof
// verifies, a trusted session is created; device labels are taken from
// trustedsession.MetaFromContext.
//
// A wrong, expired, replayed or already used code yields Success=false and
// a nil error. Malformed input yields ErrInvalidInput.
func (c *Coordinator) Challenge(ctx context.Context, userID uuid.UUID, ch Challenge, trustDevice bool) (*ChallengeResult, error) {
	if userID == uuid.Nil || ch == nil {
		return nil, ErrInvalidInput
	}
	method := ch.Method()

	if err := c.throttle(ctx, userID); err != nil {
		c.metrics.challenge(method, outcomeFor(err))
		c.logger.WarnContext(ctx, "two-factor challenge throttled",
			logger.UserID(userID),
			logger.Method(string(method)),
			logger.Error(err),
			logger.Component("twofactor"),
		)
		return nil, err
	}

	st, err := c.loadState(ctx, userID)
	if err != nil {
		c.metrics.challenge(method, outcomeError)
		return nil, err
	}
	if !st.Enabled {
		c.metrics.challenge(method, outcomeInvalid)
		return nil, ErrNotEnabled
	}

	result := &ChallengeResult{Method: method}
	var outcome string

	switch ch := ch.(type) {
	case TOTPChallenge:
		outcome, err = c.challengeTOTP(ctx, st, ch.Code)
	case BackupCodeChallenge:
		outcome, err = c.challengeBackupCode(ctx, userID, ch.Code, result)
	default:
		err = ErrInvalidInput
	}
	if err != nil {
		c.metrics.challenge(method, outcomeFor(err))
		return nil, err
	}

	c.metrics.challenge(method, outcome)
	if outcome != outcomeSuccess {
		c.logger.InfoContext(ctx, "two-factor challenge failed",
			logger.UserID(userID),
			logger.Method(string(method)),
			logger.Outcome(outcome),
			logger.Component("twofactor"),
		)
		return result, nil
	}

	result.Success = true
	c.forgive(ctx, userID)

	if trustDevice {
		token, sess, err := c.sessions.Create(ctx, userID, c.config.SessionTTL, trustedsession.MetaFromContext(ctx))
		if err != nil {
			return nil, errors.Join(ErrFailedToCreateTrust, err)
		}
		result.SessionToken = token
		result.SessionExpiresAt = &sess.ExpiresAt
	}

	c.logger.InfoContext(ctx, "two-factor challenge passed",
		logger.UserID(userID),
		logger.Method(string(method)),
		slog.Bool("trust_device", trustDevice),
		logger.Component("twofactor"),
	)

	if method == MethodBackupCode {
		c.notify(ctx, EventBackupCodeUsed, userID, result.RemainingBackupCodes)
	}

	return result, nil
}

func (c *Coordinator) challengeTOTP(ctx context.Context, st *State, code string) (string, error) {
	if _, ok := totp.NormalizeCode(code); !ok {
		return "", ErrInvalidInput
	}

	secret, err := c.openSecret(st)
	if err != nil {
		return "", err
	}
	defer secret.Zero()

	step, ok := c.verifier.Match(secret, code, c.now())
	if !ok {
		return outcomeFailure, nil
	}
	if !c.config.ReplayGuard {
		return outcomeSuccess, nil
	}

	if step <= st.LastAcceptedStep {
		return outcomeReplay, nil
	}
	advanced, err := c.users.AdvanceStep(ctx, st.UserID, step)
	if err != nil {
		return "", errors.Join(ErrFailedToSaveState, err)
	}
	if !advanced {
		return outcomeReplay, nil
	}
	return outcomeSuccess, nil
}

func (c *Coordinator) challengeBackupCode(ctx context.Context, userID uuid.UUID, code string, result *ChallengeResult) (string, error) {
	ok, err := c.codes.Consume(ctx, userID, code)
	if err != nil {
		if errors.Is(err, backupcode.ErrInvalidCode) {
			return "", errors.Join(ErrInvalidInput, err)
		}
		return "", errors.Join(ErrFailedToVerify, err)
	}
	if !ok {
		return outcomeFailure, nil
	}

	remaining, err := c.codes.Remaining(ctx, userID)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to count remaining backup codes",
			logger.UserID(userID),
			logger.Error(err),
			logger.Component("twofactor"),
		)
	}
	result.RemainingBackupCodes = remaining
	return outcomeSuccess, nil
}
