package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/uisync/internal/schema"
	"github.com/roach88/uisync/internal/state"
)

// Scenario defines a conformance scenario: a snapshot sequence, the UI
// calls it must produce, and assertions on the run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the fixed session token. Defaults to "test-session".
	Session string `yaml:"session,omitempty"`

	// Options override the default route tables.
	Options *schema.Options `yaml:"options,omitempty"`

	// Failures are injected into the recording primitives before the run.
	Failures []Failure `yaml:"failures,omitempty"`

	// Snapshots are fed to the engine in order. Unlike scripts they are not
	// validated, so a scenario can check how malformed snapshots are skipped.
	Snapshots []schema.Snapshot `yaml:"snapshots"`

	// Expect lists the exact call lines per category. When present, any
	// category left out must see no calls at all.
	Expect map[string][]string `yaml:"expect,omitempty"`

	// Assertions validate the run beyond exact call lines.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Failure makes the next Op in Category fail with Error.
type Failure struct {
	Category string `yaml:"category"`
	Op       string `yaml:"op"`
	Error    string `yaml:"error"`
}

// Assertion validates the recorded calls, outcomes or journal.
type Assertion struct {
	// Type specifies the assertion type:
	// - "calls_contain": Call appears in Category
	// - "calls_order": Calls appear in Category in this order
	// - "call_count": Category saw exactly Count calls
	// - "outcome_count": exactly Count outcomes have Status
	// - "max_in_flight": Category never had more than Count calls at once
	// - "replay_deterministic": re-planning the journal reproduces it
	Type string `yaml:"type"`

	Category string   `yaml:"category,omitempty"`
	Call     string   `yaml:"call,omitempty"`
	Calls    []string `yaml:"calls,omitempty"`
	Status   string   `yaml:"status,omitempty"`
	Count    int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCallsContain        = "calls_contain"
	AssertCallsOrder          = "calls_order"
	AssertCallCount           = "call_count"
	AssertOutcomeCount        = "outcome_count"
	AssertMaxInFlight         = "max_in_flight"
	AssertReplayDeterministic = "replay_deterministic"
)

var failureOps = map[string]bool{
	"create": true, "present": true, "dismiss": true,
	"push": true, "pop": true, "set_root": true, "set_swipe": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Snapshots) == 0 {
		return fmt.Errorf("snapshots list is required and must be non-empty")
	}

	for c := range s.Expect {
		if _, err := state.ParseCategory(c); err != nil {
			return fmt.Errorf("expect: %w", err)
		}
	}

	for i, f := range s.Failures {
		if _, err := state.ParseCategory(f.Category); err != nil {
			return fmt.Errorf("failures[%d]: %w", i, err)
		}
		if !failureOps[f.Op] {
			return fmt.Errorf("failures[%d]: unknown op %q", i, f.Op)
		}
		if f.Error == "" {
			return fmt.Errorf("failures[%d]: error is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	needCategory := func() error {
		if _, err := state.ParseCategory(a.Category); err != nil {
			return fmt.Errorf("%s: %w", a.Type, err)
		}
		return nil
	}
	switch a.Type {
	case AssertCallsContain:
		if a.Call == "" {
			return fmt.Errorf("calls_contain requires 'call' field")
		}
		return needCategory()
	case AssertCallsOrder:
		if len(a.Calls) < 2 {
			return fmt.Errorf("calls_order requires at least 2 calls")
		}
		return needCategory()
	case AssertCallCount, AssertMaxInFlight:
		if a.Count < 0 {
			return fmt.Errorf("%s: count must not be negative", a.Type)
		}
		return needCategory()
	case AssertOutcomeCount:
		switch a.Status {
		case "ok", "failed", "skipped":
		default:
			return fmt.Errorf("outcome_count: unknown status %q", a.Status)
		}
		return nil
	case AssertReplayDeterministic:
		return nil
	case "":
		return fmt.Errorf("type is required")
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}
