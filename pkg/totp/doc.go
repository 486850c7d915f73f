// Package totp provisions and verifies RFC 6238 time-based one-time passwords.
//
// The package has two halves:
//
//   - Codec generates 160-bit shared secrets, builds otpauth:// provisioning
//     URIs compatible with Google Authenticator, 1Password and similar apps,
//     and renders those URIs as QR codes.
//   - Verifier checks a submitted code against a secret for the current
//     30-second step and Window steps on either side, using constant-time
//     comparison. Input that is not exactly six digits after normalization is
//     rejected before any HMAC is computed.
//
// Secrets are carried in the Secret type, which refuses to print itself
// through fmt, slog or encoding/json. Use Reveal when the Base32 text is
// really needed and Zero once it is not.
//
// # Usage
//
//	codec, _ := totp.NewCodec("Acme")
//	secret, uri, _ := codec.GenerateSecret("alice@example.com")
//	qr, _ := codec.QRCodeDataURI(uri)
//
//	ok := totp.NewVerifier().Verify(secret, "123456", time.Now())
//
// Match additionally returns the matched time step so that callers can
// refuse to accept the same step twice.
//
// # Error Handling
//
// Verification never returns an error: a wrong or malformed code is simply
// false. Generation helpers return errors joined with package sentinels such
// as ErrFailedToGenerateSecret; inspect them with errors.Is.
package totp
