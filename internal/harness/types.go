package harness

import "github.com/roach88/uisync/internal/state"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Session is the token the run was journaled under.
	Session string `json:"session"`

	// Calls holds the rendered call lines per category, in call order.
	Calls map[state.Category][]string `json:"calls"`

	// Transcript is every call line grouped by category; golden files hold it.
	Transcript string `json:"transcript"`

	// Outcomes counts journaled outcomes by status.
	Outcomes map[string]int `json:"outcomes"`

	// MaxInFlight is the peak concurrency seen per category.
	MaxInFlight map[state.Category]int `json:"max_in_flight"`

	// Deterministic reports whether replaying the journal reproduced it.
	Deterministic bool `json:"deterministic"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Calls:       make(map[state.Category][]string),
		Outcomes:    make(map[string]int),
		MaxInFlight: make(map[state.Category]int),
		Errors:      []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
