package trustedsession

import "errors"

var (
	ErrSessionNotFound       = errors.New("trustedsession.not_found")
	ErrInvalidSession        = errors.New("trustedsession.invalid")
	ErrInvalidTTL            = errors.New("trustedsession.invalid_ttl")
	ErrTokenGeneration       = errors.New("trustedsession.token_generation_failed")
	ErrFailedToCreate        = errors.New("trustedsession.create_failed")
	ErrFailedToLoad          = errors.New("trustedsession.load_failed")
	ErrFailedToRevoke        = errors.New("trustedsession.revoke_failed")
	ErrFailedToSweep         = errors.New("trustedsession.sweep_failed")
	ErrFailedToDecodeSession = errors.New("trustedsession.decode_failed")
)
