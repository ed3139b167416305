package session

import (
	"errors"
	"fmt"
)

// ErrInvalidState is the kind shared by all caller-contract violations.
// Every *StateError matches it with errors.Is.
var ErrInvalidState = errors.New("session: invalid state")

// Reasons carried by a StateError.
var (
	ErrNotActive           = errors.New("session is not active")
	ErrAlreadyGraded       = errors.New("item already graded")
	ErrNotCurrent          = errors.New("item is not the current item")
	ErrSummaryUnavailable  = errors.New("summary is only available once the session has ended")
	ErrMalformedWorkingSet = errors.New("malformed working set")
)

// ErrFetchFailed is returned when the working set could not be loaded. An
// empty working set is not a failure.
var ErrFetchFailed = errors.New("session: could not load working set")

// StateError describes a call made in a state that does not allow it.
type StateError struct {
	Op     string
	Phase  Phase
	ItemID string
	Reason error
	Detail string
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("%s: %s in %s phase: %v", ErrInvalidState, e.Op, e.Phase, e.Reason)
	if e.ItemID != "" {
		msg += fmt.Sprintf(" (item %q)", e.ItemID)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes both the invalid-state kind and the specific reason.
func (e *StateError) Unwrap() []error {
	return []error{ErrInvalidState, e.Reason}
}

func malformed(op, format string, args ...any) error {
	return &StateError{
		Op:     op,
		Phase:  PhaseEmpty,
		Reason: ErrMalformedWorkingSet,
		Detail: fmt.Sprintf(format, args...),
	}
}
