package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter: invalid bucket config")
	ErrInvalidTokenCount = errors.New("ratelimiter: token count must be positive")

	// ErrStoreUnavailable wraps backend failures. Callers deny the request.
	ErrStoreUnavailable = errors.New("ratelimiter: store unavailable")
)
