package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/uisync/internal/state"
)

// RuntimeError represents an error detected while the engine is running,
// outside of a single delegation.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Session identifies the affected engine run.
	Session string

	// Category is the lane involved, if any.
	Category state.Category
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNoLane indicates effects were planned for a category that has
	// no primitive configured.
	ErrCodeNoLane RuntimeErrorCode = "NO_LANE"

	// ErrCodeLaneClosed indicates a job was submitted after shutdown began.
	ErrCodeLaneClosed RuntimeErrorCode = "LANE_CLOSED"

	// ErrCodeAlreadySubscribed indicates a single-consumer source was
	// subscribed twice.
	ErrCodeAlreadySubscribed RuntimeErrorCode = "ALREADY_SUBSCRIBED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	switch {
	case e.Session != "" && e.Category != "":
		return fmt.Sprintf("%s: %s (session=%s, category=%s)", e.Code, e.Message, e.Session, e.Category)
	case e.Category != "":
		return fmt.Sprintf("%s: %s (category=%s)", e.Code, e.Message, e.Category)
	case e.Session != "":
		return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.Session)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is a RuntimeError with the given code.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// DelegationError reports a UI primitive that rejected an effect.
// There is no retry: the next pair in the same category proceeds normally.
type DelegationError struct {
	Category state.Category
	Effect   state.Effect
	Err      error
}

func (e *DelegationError) Error() string {
	return fmt.Sprintf("delegate %s on %s lane: %v", e.Effect, e.Category, e.Err)
}

func (e *DelegationError) Unwrap() error {
	return e.Err
}

// IsDelegationError reports whether err is or wraps a DelegationError.
func IsDelegationError(err error) bool {
	var de *DelegationError
	return errors.As(err, &de)
}
