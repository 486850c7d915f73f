package twofactor

import (
	"time"
)

// Method names the second factor used in a challenge.
type Method string

const (
	MethodTOTP       Method = "totp"
	MethodBackupCode Method = "backup_code"
)

// Challenge is a second-factor proof. It is either TOTPChallenge or
// BackupCodeChallenge; no other implementations exist.
type Challenge interface {
	Method() Method
	sealed()
}

// TOTPChallenge carries a code from an authenticator app.
type TOTPChallenge struct {
	Code string
}

func (TOTPChallenge) Method() Method { return MethodTOTP }
func (TOTPChallenge) sealed()        {}

// BackupCodeChallenge carries a single-use recovery code.
type BackupCodeChallenge struct {
	Code string
}

func (BackupCodeChallenge) Method() Method { return MethodBackupCode }
func (BackupCodeChallenge) sealed()        {}

// TOTP builds a TOTP challenge.
func TOTP(code string) Challenge {
	return TOTPChallenge{Code: code}
}

// BackupCode builds a backup-code challenge.
func BackupCode(code string) Challenge {
	return BackupCodeChallenge{Code: code}
}

// ChallengeResult is the outcome of a challenge. A wrong code is
// Success=false with a nil error.
type ChallengeResult struct {
	Success bool
	Method  Method

	// Set only when the caller asked to trust the device.
	SessionToken     string
	SessionExpiresAt *time.Time

	// Set only for successful backup-code challenges.
	RemainingBackupCodes int
}
