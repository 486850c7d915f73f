package twofactor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/statemachine"
)

// Lifecycle states of a user's second factor.
const (
	StatusDisabled     statemachine.State = "disabled"
	StatusPendingSetup statemachine.State = "pending_setup"
	StatusEnabled      statemachine.State = "enabled"
)

const (
	eventBeginSetup statemachine.Event = "begin_setup"
	eventConfirm    statemachine.Event = "confirm"
	eventDisable    statemachine.Event = "disable"
)

// State is the persisted second-factor state of one user.
// Secret holds the sealed TOTP secret and is non-empty iff Enabled.
type State struct {
	UserID           uuid.UUID
	Secret           []byte
	Enabled          bool
	SetupAt          *time.Time
	PendingSince     *time.Time
	LastAcceptedStep int64
	CascadePending   bool
}

// Status maps the stored fields onto a lifecycle state.
func (s *State) Status() statemachine.State {
	switch {
	case s.Enabled:
		return StatusEnabled
	case s.PendingSince != nil:
		return StatusPendingSetup
	default:
		return StatusDisabled
	}
}

// effect is the storage write that commits a transition.
type effect func(ctx context.Context) error

func commit(ctx context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	if fn, ok := data.(effect); ok {
		return fn(ctx)
	}
	return nil
}

var lifecycle = statemachine.MustDefine(
	statemachine.WithTransition(StatusDisabled, StatusPendingSetup, eventBeginSetup, statemachine.WithAction(commit)),
	statemachine.WithTransition(StatusPendingSetup, StatusPendingSetup, eventBeginSetup, statemachine.WithAction(commit)),
	statemachine.WithTransition(StatusPendingSetup, StatusEnabled, eventConfirm, statemachine.WithAction(commit)),
	statemachine.WithTransition(StatusEnabled, StatusDisabled, eventDisable, statemachine.WithAction(commit)),
)

// transition moves st through event, running fx as the commit step.
// Undefined transitions are reported with the state error a caller expects.
func transition(ctx context.Context, st *State, event statemachine.Event, fx effect) error {
	m, err := lifecycle.Start(st.Status())
	if err != nil {
		return err
	}

	err = m.Fire(ctx, event, fx)
	if err == nil || !statemachine.IsNoTransitionAvailableError(err) {
		return err
	}

	switch {
	case st.Status() == StatusEnabled:
		return ErrAlreadyEnabled
	case event == eventConfirm:
		return ErrSetupNotStarted
	default:
		return ErrNotEnabled
	}
}
