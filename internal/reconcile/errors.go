package reconcile

import (
	"errors"
	"fmt"

	"github.com/roach88/uisync/internal/state"
)

// PreconditionViolation reports input that the reconcilers refuse to
// interpret, such as an empty route stack. A well-behaved snapshot source
// never triggers it.
type PreconditionViolation struct {
	Op     string // Reconciler that rejected the input (e.g., "route", "swipe")
	Reason string // Which side of the pair was malformed and why
	Err    error  // Underlying cause
}

func (e *PreconditionViolation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("precondition violation in %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("precondition violation in %s: %s", e.Op, e.Reason)
}

func (e *PreconditionViolation) Unwrap() error {
	return e.Err
}

// IsPreconditionViolation reports whether err is or wraps a PreconditionViolation.
func IsPreconditionViolation(err error) bool {
	var pv *PreconditionViolation
	return errors.As(err, &pv)
}

func topOf(op, side string, stack state.RouteStack) (state.Route, error) {
	top, err := stack.Top()
	if err != nil {
		return state.Route{}, &PreconditionViolation{Op: op, Reason: side + " stack has no top", Err: err}
	}
	return top, nil
}
