package statemachine

import (
	"context"
	"fmt"
)

// Machine tracks the state of one entity against a Definition.
// It is not safe for concurrent use; create one per request.
type Machine struct {
	def     *Definition
	current State
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.current
}

// Fire applies event. Guards are evaluated first, then actions; the state
// only changes when every action succeeds.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	t, err := m.resolve(ctx, event, data)
	if err != nil {
		return err
	}

	for _, action := range t.actions {
		if err := action(ctx, m.current, t.to, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.to
	return nil
}

// CanFire reports whether event would pass its guards in the current state.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	_, err := m.resolve(ctx, event, data)
	return err == nil
}

func (m *Machine) resolve(ctx context.Context, event Event, data any) (*transition, error) {
	if event == "" {
		return nil, ErrInvalidEvent
	}

	candidates := m.def.transitions[m.current][event]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(m.current, event)
	}

	for i := range candidates {
		if guardsPass(ctx, candidates[i].guards, m.current, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, NewErrTransitionRejected(m.current, event)
}

func guardsPass(ctx context.Context, guards []Guard, from State, event Event, data any) bool {
	for _, g := range guards {
		if !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}
