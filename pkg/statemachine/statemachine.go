package statemachine

import (
	"context"
	"fmt"
)

// State is a named state of a workflow.
type State string

// Event is a named trigger that may move a workflow between states.
type Event string

// Action executes side effects during a transition. Returning an error
// prevents the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard evaluates whether a transition may proceed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

type transition struct {
	to      State
	guards  []Guard
	actions []Action
}

// Definition is an immutable transition table. Build it once at startup and
// start a Machine from it for every entity whose state is loaded from storage.
type Definition struct {
	states      map[State]struct{}
	transitions map[State]map[Event][]transition
}

// Option adds transitions to a Definition under construction.
type Option func(*Definition) error

// TransitionOption configures a single transition.
type TransitionOption func(*transition)

// Define builds a Definition from the given options.
func Define(opts ...Option) (*Definition, error) {
	d := &Definition{
		states:      make(map[State]struct{}),
		transitions: make(map[State]map[Event][]transition),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustDefine is like Define but panics on error.
func MustDefine(opts ...Option) *Definition {
	d, err := Define(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to define state machine: %v", err))
	}
	return d
}

// WithTransition adds a transition. Several transitions may share a source
// state and event; the first whose guards pass wins.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(d *Definition) error {
		if from == "" || to == "" || event == "" {
			return ErrInvalidTransition
		}

		t := transition{to: to}
		for _, opt := range opts {
			opt(&t)
		}

		if _, ok := d.transitions[from]; !ok {
			d.transitions[from] = make(map[Event][]transition)
		}
		d.transitions[from][event] = append(d.transitions[from][event], t)
		d.states[from] = struct{}{}
		d.states[to] = struct{}{}
		return nil
	}
}

// WithGuard adds a guard to a transition.
func WithGuard(guard Guard) TransitionOption {
	return func(t *transition) {
		if guard != nil {
			t.guards = append(t.guards, guard)
		}
	}
}

// WithAction adds an action to a transition. Actions run in order after
// the guards pass and before the state changes.
func WithAction(action Action) TransitionOption {
	return func(t *transition) {
		if action != nil {
			t.actions = append(t.actions, action)
		}
	}
}

// Known reports whether s appears in any transition.
func (d *Definition) Known(s State) bool {
	_, ok := d.states[s]
	return ok
}

// Events returns the events defined for transitions out of s.
func (d *Definition) Events(s State) []Event {
	out := make([]Event, 0, len(d.transitions[s]))
	for e := range d.transitions[s] {
		out = append(out, e)
	}
	return out
}

// Start returns a Machine positioned at current.
func (d *Definition) Start(current State) (*Machine, error) {
	if !d.Known(current) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, current)
	}
	return &Machine{def: d, current: current}, nil
}
