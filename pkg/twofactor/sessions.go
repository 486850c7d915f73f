package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/statemachine"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

// RevokeAllSessions signs out every trusted device of the user.
func (c *Coordinator) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidInput
	}

	n, err := c.sessions.RevokeAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.notify(ctx, EventSessionsRevoked, userID, 0)
	}
	return n, nil
}

// VerifySession checks a trusted-device token. It returns nil for unknown
// tokens. A session of a user whose second factor is no longer enabled is
// reported as invalid even if the disable cascade has not removed it yet.
func (c *Coordinator) VerifySession(ctx context.Context, token string) (*trustedsession.Verification, error) {
	v, err := c.sessions.Verify(ctx, token)
	if err != nil || v == nil || !v.Valid {
		return v, err
	}

	st, err := c.loadState(ctx, v.UserID)
	if err != nil {
		return nil, err
	}
	if !st.Enabled {
		v.Valid = false
	}
	return v, nil
}

// ListSessions returns the user's live trusted sessions.
func (c *Coordinator) ListSessions(ctx context.Context, userID uuid.UUID) ([]trustedsession.Session, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	return c.sessions.List(ctx, userID)
}

// SweepExpiredSessions removes expired trusted sessions.
func (c *Coordinator) SweepExpiredSessions(ctx context.Context) (int, error) {
	n, err := c.sessions.SweepExpired(ctx)
	if err != nil {
		return 0, err
	}
	c.metrics.sweep(n)
	return n, nil
}

// StatusInfo summarizes a user's second factor.
type StatusInfo struct {
	Status               statemachine.State
	Enabled              bool
	SetupAt              *time.Time
	PendingSince         *time.Time
	RemainingBackupCodes int
	CascadePending       bool
}

// Status reports the user's second-factor state.
func (c *Coordinator) Status(ctx context.Context, userID uuid.UUID) (*StatusInfo, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	st, err := c.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	info := &StatusInfo{
		Status:         st.Status(),
		Enabled:        st.Enabled,
		SetupAt:        st.SetupAt,
		PendingSince:   st.PendingSince,
		CascadePending: st.CascadePending,
	}

	if st.Enabled {
		n, err := c.codes.Remaining(ctx, userID)
		if err != nil {
			return nil, err
		}
		info.RemainingBackupCodes = n
	}
	return info, nil
}
