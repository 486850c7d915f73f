package trustedsession

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence operations for trusted sessions.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID, expired or not.
	// Returns ErrSessionNotFound when no row exists.
	Get(ctx context.Context, id string) (*Session, error)

	// ListByUser returns every stored session of the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Session, error)

	// DeleteByUserID removes the sessions of the user that exist at call time
	// and returns how many were removed.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteExpired removes sessions with ExpiresAt at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
