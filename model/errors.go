package model

import (
	"errors"
	"fmt"
)

// ErrMalformedModel is returned when the transition structure or outcome
// distributions violate the MDP invariants.
var ErrMalformedModel = errors.New("malformed model")

// ErrUnknownState is returned when a state is referenced but absent from the
// state graph, or when a required per-state entry is missing.
var ErrUnknownState = errors.New("unknown state")

// ErrUnknownAction is returned when an action is referenced but absent from
// the action list.
var ErrUnknownAction = errors.New("unknown action")

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Subject string // What failed, e.g. `state (1,1)` or `action "L"`
	Reason  string // Human-readable reason for failure
	Err     error  // One of the sentinel errors above
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.Err, e.Subject, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func stateError[S comparable](s S, err error, format string, args ...any) error {
	return &ValidationError{
		Subject: fmt.Sprintf("state %v", s),
		Reason:  fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func actionError(a Action, err error, format string, args ...any) error {
	return &ValidationError{
		Subject: fmt.Sprintf("action %q", a),
		Reason:  fmt.Sprintf(format, args...),
		Err:     err,
	}
}
