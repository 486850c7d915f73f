package trustedsession

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// TokenSize is the number of random bytes in a trusted session token.
const TokenSize = 32

// Session is a stored trusted-device grant. The raw token is never stored;
// ID is the hex SHA-256 of the token.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	UserAgent string    `json:"user_agent,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

// Meta carries optional labels shown when a user lists their devices.
type Meta struct {
	UserAgent string
	IP        string
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Verification is the outcome of looking up a presented token.
type Verification struct {
	UserID    uuid.UUID
	Valid     bool
	ExpiresAt time.Time
}

// HashToken returns the storage key for a raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// wellFormed reports whether token could have been issued by Manager.
func wellFormed(token string) bool {
	if len(token) != base64.RawURLEncoding.EncodedLen(TokenSize) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil
}
