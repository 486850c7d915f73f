// Package statemachine provides a small finite-state-machine for workflows
// whose state lives in storage.
//
// A Definition holds the transition table and is shared. A Machine is cheap,
// positioned at a state loaded from storage, and discarded after the request:
//
//	def := statemachine.MustDefine(
//	    statemachine.WithTransition(Disabled, Pending, BeginSetup),
//	    statemachine.WithTransition(Pending, Enabled, Confirm,
//	        statemachine.WithAction(persistEnabled),
//	    ),
//	)
//
//	m, err := def.Start(loaded)
//	err = m.Fire(ctx, Confirm, data)
//
// Actions run after guards and before the state changes, so an action that
// performs the conditional write in storage decides whether the transition
// happens. Use IsNoTransitionAvailableError and IsTransitionRejectedError to
// tell an undefined transition from a vetoed one.
package statemachine
