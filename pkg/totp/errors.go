package totp

import "errors"

var (
	ErrFailedToGenerateSecret = errors.New("failed to generate TOTP secret")
	ErrFailedToGenerateCode   = errors.New("failed to generate TOTP code")
	ErrFailedToGenerateQRCode = errors.New("failed to generate QR code")
	ErrMissingSecret          = errors.New("missing secret")
	ErrInvalidSecret          = errors.New("invalid secret")
	ErrMissingAccountName     = errors.New("missing account name")
	ErrMissingIssuer          = errors.New("missing issuer")
	ErrEmptyContent           = errors.New("QR code content cannot be empty")
)
