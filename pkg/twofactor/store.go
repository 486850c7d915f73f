package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore persists per-user second-factor state. Every mutating method
// is a conditional write and reports whether it applied.
type UserStore interface {
	// GetState returns the state of the user. Users without a row are
	// reported as disabled, never as an error.
	GetState(ctx context.Context, userID uuid.UUID) (*State, error)

	// MarkPending records a setup attempt unless 2FA is already enabled or a
	// disable cascade is still pending.
	MarkPending(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error)

	// Enable stores the sealed secret and flips enabled on, only while a
	// setup is pending. step seeds the replay guard.
	Enable(ctx context.Context, userID uuid.UUID, sealedSecret []byte, at time.Time, step int64) (bool, error)

	// Disable clears the secret and sets the cascade flag, only while enabled.
	Disable(ctx context.Context, userID uuid.UUID) (bool, error)

	// AdvanceStep raises the last accepted TOTP step, only while enabled and
	// only when step is greater than the stored one.
	AdvanceStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error)

	// ClearCascade drops the cascade flag once sessions and codes are gone.
	ClearCascade(ctx context.Context, userID uuid.UUID) error

	// ListCascadePending returns up to limit disabled users whose disable
	// cascade has not completed.
	ListCascadePending(ctx context.Context, limit int) ([]uuid.UUID, error)
}
