package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/twofactor/pkg/logger"
)

func TestAttrs(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	boom := errors.New("boom")

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		val  string
	}{
		{"error", logger.Error(boom), "error", "boom"},
		{"user id", logger.UserID(id), "user_id", id.String()},
		{"request id", logger.RequestID("abc"), "request_id", "abc"},
		{"client ip", logger.ClientIP("10.0.0.1"), "client_ip", "10.0.0.1"},
		{"method", logger.Method("totp"), "method", "totp"},
		{"outcome", logger.Outcome("replay"), "outcome", "replay"},
		{"duration", logger.Duration(1500 * time.Millisecond), "duration", "1.5s"},
		{"component", logger.Component("janitor"), "component", "janitor"},
		{"event", logger.Event("disable"), "event", "disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.val, tt.attr.Value.String())
		})
	}
}

func TestAttrs_EmptyValuesAreDropped(t *testing.T) {
	t.Parallel()

	for name, attr := range map[string]slog.Attr{
		"nil error":  logger.Error(nil),
		"nil user":   logger.UserID(uuid.Nil),
		"no request": logger.RequestID(""),
		"no ip":      logger.ClientIP(""),
	} {
		assert.True(t, attr.Equal(slog.Attr{}), name)
	}
}
