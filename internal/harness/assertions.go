package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/uisync/internal/state"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Calls    []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Calls) > 0 {
		fmt.Fprintf(&buf, "\nCalls:\n")
		for i, line := range e.Calls {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages. Assertions that pass produce nothing.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	calls := result.Calls[state.Category(a.Category)]
	switch a.Type {
	case AssertCallsContain:
		return assertCallsContain(calls, a)
	case AssertCallsOrder:
		return assertCallsOrder(calls, a)
	case AssertCallCount:
		if len(calls) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d %s calls", a.Count, a.Category),
				Actual:   fmt.Sprintf("%d calls", len(calls)),
				Calls:    calls,
			}
		}
	case AssertOutcomeCount:
		if got := result.Outcomes[a.Status]; got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d %s outcomes", a.Count, a.Status),
				Actual:   fmt.Sprintf("%d", got),
			}
		}
	case AssertMaxInFlight:
		if got := result.MaxInFlight[state.Category(a.Category)]; got > a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("at most %d concurrent %s calls", a.Count, a.Category),
				Actual:   fmt.Sprintf("%d", got),
			}
		}
	case AssertReplayDeterministic:
		if !result.Deterministic {
			return &AssertionError{
				Type:     a.Type,
				Expected: "replayed plan matches the journal",
				Actual:   "journal diverged from replay",
			}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertCallsContain(calls []string, a Assertion) error {
	for _, line := range calls {
		if line == a.Call {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s call %q", a.Category, a.Call),
		Actual:   "not found",
		Calls:    calls,
	}
}

// assertCallsOrder checks that the calls appear in order.
// They don't need to be consecutive.
func assertCallsOrder(calls []string, a Assertion) error {
	next := 0
	for _, line := range calls {
		if next < len(a.Calls) && line == a.Calls[next] {
			next++
		}
	}
	if next == len(a.Calls) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s calls in order: %q", a.Category, a.Calls),
		Actual:   fmt.Sprintf("matched up to %q", a.Calls[:next]),
		Calls:    calls,
	}
}
