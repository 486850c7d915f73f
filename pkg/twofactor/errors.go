package twofactor

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Validation errors, returned before any crypto or store work.
	ErrInvalidInput  = errors.New("twofactor.invalid_input")
	ErrMissingSecret = errors.New("twofactor.missing_secret")

	// State errors.
	ErrNotEnabled      = errors.New("twofactor.not_enabled")
	ErrAlreadyEnabled  = errors.New("twofactor.already_enabled")
	ErrSetupNotStarted = errors.New("twofactor.setup_not_started")
	ErrSetupExpired    = errors.New("twofactor.setup_expired")

	// Throttling.
	ErrTooManyAttempts = errors.New("twofactor.too_many_attempts")

	// Store and infrastructure faults.
	ErrMissingDependency   = errors.New("twofactor.missing_dependency")
	ErrFailedToLoadState   = errors.New("twofactor.load_state_failed")
	ErrFailedToSaveState   = errors.New("twofactor.save_state_failed")
	ErrFailedToSealSecret  = errors.New("twofactor.seal_secret_failed")
	ErrFailedToOpenSecret  = errors.New("twofactor.open_secret_failed")
	ErrFailedToGenerate    = errors.New("twofactor.generate_failed")
	ErrFailedToVerify      = errors.New("twofactor.verify_failed")
	ErrFailedToCreateTrust = errors.New("twofactor.trusted_session_failed")
	ErrThrottleUnavailable = errors.New("twofactor.throttle_unavailable")

	// ErrCascadeIncomplete reports that 2FA was disabled but trusted sessions or
	// backup codes could not all be removed. The janitor finishes the job.
	ErrCascadeIncomplete = errors.New("twofactor.cascade_incomplete")
)

// AttemptsExceededError is returned when the per-user attempt budget is
// spent. It matches ErrTooManyAttempts with errors.Is.
type AttemptsExceededError struct {
	RetryAfter time.Duration
}

func (e *AttemptsExceededError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrTooManyAttempts, e.RetryAfter.Round(time.Second))
}

func (e *AttemptsExceededError) Is(target error) bool {
	return target == ErrTooManyAttempts
}
