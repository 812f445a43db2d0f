package controller

import (
	"context"
	"sync"
)

// ActionController owns the transient busy/error state of mutating calls
// (create, update, activate, deactivate, delete). Failures propagate twice
// on purpose: the error is recorded on the controller for passive rendering
// AND returned to the caller so it can react locally (keep a form open,
// roll back optimistic state).
//
// Busy/Err are per controller instance, not per item; callers running
// concurrent actions on different items track which item is busy themselves.
type ActionController struct {
	mu      sync.Mutex
	busy    bool
	lastErr string
}

// Run executes op under the controller's micro-protocol: error cleared and
// busy set before the call, error recorded on failure, busy always cleared.
func (a *ActionController) Run(ctx context.Context, op func(context.Context) error) error {
	a.mu.Lock()
	a.busy = true
	a.lastErr = ""
	a.mu.Unlock()

	err := op(ctx)

	a.mu.Lock()
	a.busy = false
	if err != nil {
		a.lastErr = err.Error()
	}
	a.mu.Unlock()
	return err
}

// RunAction is Run for operations that produce a value.
func RunAction[T any](a *ActionController, ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := a.Run(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Busy reports whether an action is in flight.
func (a *ActionController) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Err returns the last action failure message, empty after success or
// ClearError.
func (a *ActionController) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// ClearError resets the error without touching the busy flag.
func (a *ActionController) ClearError() {
	a.mu.Lock()
	a.lastErr = ""
	a.mu.Unlock()
}
