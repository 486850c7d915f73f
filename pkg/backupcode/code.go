package backupcode

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/secrets"
)

const (
	// DefaultCount is the number of codes issued per batch.
	DefaultCount = 10
	// DefaultLength is the number of characters per code (40 bits of entropy).
	DefaultLength = 8
	// MaxCount bounds a single batch.
	MaxCount = 100

	// Alphabet omits 0, 1, I and O to avoid transcription mistakes. Its size
	// is 32, so a random byte masked to 5 bits maps onto it without bias.
	Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// Code is a stored backup code. The plaintext is never persisted.
type Code struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Hash      string
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Hasher turns a normalized code into its stored lookup form.
// Implementations must be deterministic for a given user and code.
type Hasher interface {
	Hash(userID uuid.UUID, code string) (string, error)
}

// SHA256Hasher hashes codes with plain SHA-256. Suitable for tests and for
// deployments without a master key; prefer KeyedHasher in production.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(_ uuid.UUID, code string) (string, error) {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:]), nil
}

// KeyedHasher derives an HMAC key per user from the master key, so a leaked
// table cannot be brute-forced offline without the key.
type KeyedHasher struct {
	Sealer *secrets.Sealer
}

func (h KeyedHasher) Hash(userID uuid.UUID, code string) (string, error) {
	return h.Sealer.Digest("backup-code:"+userID.String(), code)
}
