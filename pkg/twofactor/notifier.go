package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a security-relevant change worth telling the user about.
type EventKind string

const (
	EventEnabled                EventKind = "two_factor.enabled"
	EventDisabled               EventKind = "two_factor.disabled"
	EventBackupCodeUsed         EventKind = "two_factor.backup_code_used"
	EventBackupCodesRegenerated EventKind = "two_factor.backup_codes_regenerated"
	EventSessionsRevoked        EventKind = "two_factor.sessions_revoked"
)

// Notification describes one security event for one user.
type Notification struct {
	Kind                 EventKind
	UserID               uuid.UUID
	At                   time.Time
	RemainingBackupCodes int
}

// Notifier delivers security notifications. Delivery failures are logged by
// the coordinator and never fail the operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) error { return nil }
