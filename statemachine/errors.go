package statemachine

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrUnknownState indicates a state value outside the five machine states.
	ErrUnknownState = errors.New("unknown state")
	// ErrUnknownEvent indicates an event value outside the six edge events.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrDuplicateRule indicates two rules for the same (state, event) pair.
	ErrDuplicateRule = errors.New("duplicate rule")
	// ErrNoEntryActions indicates an engine was built without entry actions.
	ErrNoEntryActions = errors.New("entry actions are required")
	// ErrNotStarted indicates Handle was called before Start.
	ErrNotStarted = errors.New("engine not started")
)

// StateError wraps an error with the state the engine was in.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// RuleError wraps an error with the offending rule.
type RuleError struct {
	Index int
	Rule  Rule
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d (%s): %v", e.Index, e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// WrapStateError wraps an error with state context.
func WrapStateError(state State, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{
		State: state,
		Err:   err,
	}
}
