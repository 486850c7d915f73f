package totp

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/dmitrymomot/twofactor/pkg/sanitizer"
)

// Verification policy. These are deliberately not configurable per user.
const (
	Digits = 6  // Standard 6-digit codes
	Period = 30 // Time step length in seconds (RFC 6238)
	Window = 2  // Adjacent steps accepted on either side of the current one
)

var validateOpts = totp.ValidateOpts{
	Period:    Period,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Verifier checks submitted codes against a shared secret.
// The zero value is ready to use.
type Verifier struct{}

// NewVerifier returns a Verifier using the package policy constants.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify reports whether code is valid for secret at time now.
func (v *Verifier) Verify(secret Secret, code string, now time.Time) bool {
	_, ok := v.Match(secret, code, now)
	return ok
}

// Match is like Verify and also returns the time step the code was generated
// for, so callers can reject a second use of the same step.
//
// Malformed codes are rejected before any HMAC is computed. All candidate
// steps are evaluated regardless of an earlier hit.
func (v *Verifier) Match(secret Secret, code string, now time.Time) (int64, bool) {
	code, ok := NormalizeCode(code)
	if !ok || secret.IsZero() {
		return 0, false
	}

	current := Step(now)
	var (
		matched int64
		found   int
	)
	for offset := int64(-Window); offset <= Window; offset++ {
		step := current + offset
		expected, err := codeForStep(secret, step)
		if err != nil {
			return 0, false
		}
		hit := subtle.ConstantTimeCompare([]byte(expected), []byte(code))
		if hit == 1 {
			matched = step
		}
		found |= hit
	}
	return matched, found == 1
}

// CodeAt returns the code for the step containing t.
func (v *Verifier) CodeAt(secret Secret, t time.Time) (string, error) {
	if secret.IsZero() {
		return "", ErrMissingSecret
	}
	return codeForStep(secret, Step(t))
}

// Step returns the RFC 6238 counter for t.
func Step(t time.Time) int64 {
	return t.Unix() / Period
}

// NormalizeCode canonicalizes user input and reports whether it is exactly
// Digits ASCII digits.
func NormalizeCode(code string) (string, bool) {
	if len(code) > 64 {
		return "", false
	}
	code = sanitizer.OneTimeCode(code)
	if len(code) != Digits || !sanitizer.IsASCIIDigits(code) {
		return "", false
	}
	return code, true
}

func codeForStep(secret Secret, step int64) (string, error) {
	code, err := totp.GenerateCodeCustom(secret.Reveal(), time.Unix(step*Period, 0).UTC(), validateOpts)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}
	return code, nil
}
