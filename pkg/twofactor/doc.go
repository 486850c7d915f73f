// Package twofactor coordinates the lifecycle of a user's second factor:
// setup, confirmation, runtime challenges, trusted devices and disable.
//
// The lifecycle is a small state machine:
//
//	disabled --begin_setup--> pending_setup --confirm--> enabled
//	pending_setup --begin_setup--> pending_setup
//	enabled --disable--> disabled
//
// Every transition is committed by a conditional write in UserStore, so two
// requests racing on the same user cannot both enable or both disable.
//
// A challenge is either TOTP(code) or BackupCode(code). Wrong codes are not
// errors: Challenge returns Success=false. Errors mean malformed input
// (ErrInvalidInput), a state conflict (ErrNotEnabled and friends), throttling
// (ErrTooManyAttempts) or a store fault, which callers must not report as a
// wrong code.
//
// TOTP secrets are sealed with a SecretSealer before they are stored. With
// the replay guard on, a code is accepted at most once per time step.
//
// Disable keeps the flip to disabled even if removing trusted sessions or
// backup codes fails; the Janitor later finishes the removal via Reconcile.
package twofactor
