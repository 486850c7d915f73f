package totp

import (
	"encoding/base32"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// secretRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding.
var secretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// Secret is a Base32-encoded TOTP shared secret.
//
// The value never renders through fmt, slog or encoding/json; call Reveal
// when the plaintext must leave the process (provisioning response, sealing).
// Zero wipes the backing buffer, which is shared between copies.
type Secret struct {
	b []byte
}

// ParseSecret validates and canonicalizes a Base32 secret (spaces removed,
// uppercased, padding stripped).
func ParseSecret(s string) (Secret, error) {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if s == "" {
		return Secret{}, ErrMissingSecret
	}
	if !secretRegex.MatchString(s) {
		return Secret{}, ErrInvalidSecret
	}
	s = strings.TrimRight(s, "=")
	if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s); err != nil {
		return Secret{}, ErrInvalidSecret
	}
	return Secret{b: []byte(s)}, nil
}

// MustParseSecret is like ParseSecret but panics on error. Intended for tests
// and fixed fixtures.
func MustParseSecret(s string) Secret {
	secret, err := ParseSecret(s)
	if err != nil {
		panic(err)
	}
	return secret
}

// Reveal returns the Base32 text of the secret.
func (s Secret) Reveal() string {
	return string(s.b)
}

// IsZero reports whether the secret is empty or has been wiped.
func (s Secret) IsZero() bool {
	for _, c := range s.b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Zero overwrites the secret in place.
func (s Secret) Zero() {
	for i := range s.b {
		s.b[i] = 0
	}
}

func (s Secret) String() string { return redacted }
func (s Secret) GoString() string { return redacted }
func (s Secret) LogValue() slog.Value { return slog.StringValue(redacted) }
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"` + redacted + `"`), nil }
