package backupcode

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence operations for backup codes.
type Store interface {
	// Replace deletes every unused code of the user and inserts codes in one
	// atomic operation. Used codes are kept as history.
	Replace(ctx context.Context, userID uuid.UUID, codes []Code) error

	// Consume marks the unused code with the given hash as used, checking and
	// setting in a single conditional write. Reports whether a row changed.
	Consume(ctx context.Context, userID uuid.UUID, hash string, usedAt time.Time) (bool, error)

	// CountUnused returns the number of codes still available to the user.
	CountUnused(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteAll removes used and unused codes of the user.
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}
