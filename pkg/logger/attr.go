package logger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Attribute keys shared by every component, so log queries stay uniform.
const (
	KeyError     = "error"
	KeyUserID    = "user_id"
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"
	KeyMethod    = "method"
	KeyOutcome   = "outcome"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyEvent     = "event"
)

// optional returns an empty Attr for empty values; slog drops those.
func optional(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}

// Error records err. A nil error produces an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// UserID records the user. uuid.Nil produces an empty Attr.
func UserID(id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String(KeyUserID, id.String())
}

// RequestID records the request identifier if there is one.
func RequestID(id string) slog.Attr { return optional(KeyRequestID, id) }

// ClientIP records the caller address if it is known.
func ClientIP(ip string) slog.Attr { return optional(KeyClientIP, ip) }

// Method records the second factor method.
func Method(name string) slog.Attr { return slog.String(KeyMethod, name) }

// Outcome records how an operation ended.
func Outcome(name string) slog.Attr { return slog.String(KeyOutcome, name) }

// Duration records elapsed time.
func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

func Event(name string) slog.Attr { return slog.String(KeyEvent, name) }
