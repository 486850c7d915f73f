package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// HTTPError pairs a status code with a stable machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

// Message returns the status text shown to clients.
func (e HTTPError) Message() string { return http.StatusText(e.Code) }

var (
	ErrBadRequest         = HTTPError{Code: http.StatusBadRequest, Key: "invalid_input"}
	ErrUnauthorized       = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrInvalidCode        = HTTPError{Code: http.StatusUnauthorized, Key: "invalid_code"}
	ErrRejectedCode       = HTTPError{Code: http.StatusUnprocessableEntity, Key: "invalid_code"}
	ErrNotFound           = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrMethodNotAllowed   = HTTPError{Code: http.StatusMethodNotAllowed, Key: "method_not_allowed"}
	ErrTooLarge           = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_too_large"}
	ErrUnsupportedMedia   = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrNotEnabled         = HTTPError{Code: http.StatusConflict, Key: "not_enabled"}
	ErrAlreadyEnabled     = HTTPError{Code: http.StatusConflict, Key: "already_enabled"}
	ErrSetupNotStarted    = HTTPError{Code: http.StatusConflict, Key: "setup_not_started"}
	ErrSetupExpired       = HTTPError{Code: http.StatusConflict, Key: "setup_expired"}
	ErrTooManyAttempts    = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_attempts"}
	ErrTooManyRequests    = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrServiceUnavailable = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

// classify maps a domain error onto its HTTP form. Anything unrecognized is
// a dependency fault and reported as 503.
func classify(err error) (HTTPError, []JSONOption) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, nil
	}

	switch {
	case errors.Is(err, twofactor.ErrInvalidInput),
		errors.Is(err, twofactor.ErrMissingSecret),
		errors.Is(err, totp.ErrMissingSecret),
		errors.Is(err, totp.ErrInvalidSecret):
		return ErrBadRequest, nil
	case errors.Is(err, twofactor.ErrNotEnabled):
		return ErrNotEnabled, nil
	case errors.Is(err, twofactor.ErrAlreadyEnabled):
		return ErrAlreadyEnabled, nil
	case errors.Is(err, twofactor.ErrSetupNotStarted):
		return ErrSetupNotStarted, nil
	case errors.Is(err, twofactor.ErrSetupExpired):
		return ErrSetupExpired, nil
	case errors.Is(err, twofactor.ErrTooManyAttempts):
		var opts []JSONOption
		var exceeded *twofactor.AttemptsExceededError
		if errors.As(err, &exceeded) && exceeded.RetryAfter > 0 {
			secs := int((exceeded.RetryAfter + time.Second - 1) / time.Second)
			opts = append(opts, WithHeader("Retry-After", strconv.Itoa(secs)))
		}
		return ErrTooManyAttempts, opts
	default:
		return ErrServiceUnavailable, nil
	}
}
