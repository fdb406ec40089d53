package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/uisync/internal/engine"
	"github.com/roach88/uisync/internal/metrics"
	"github.com/roach88/uisync/internal/reconcile"
	"github.com/roach88/uisync/internal/schema"
	"github.com/roach88/uisync/internal/state"
	"github.com/roach88/uisync/internal/store"
	"github.com/roach88/uisync/internal/testutil"
)

// RunTimeout bounds a single scenario run.
const RunTimeout = 10 * time.Second

// Run executes a scenario through the real engine and returns the result.
//
// Each scenario runs against fresh recording primitives and a fresh
// in-memory journal, with a fixed session token, so results are
// reproducible.
//
// Execution flow:
// 1. Inject the scenario's failures into the recorder
// 2. Feed the snapshots through engine.Run until every lane drains
// 3. Collect calls and journaled outcomes
// 4. Replay the journal and diff it against the live plan
// 5. Check expectations and assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rec := testutil.NewRecorder()
	for _, f := range scenario.Failures {
		c, err := state.ParseCategory(f.Category)
		if err != nil {
			return nil, err
		}
		rec.FailNext(c, f.Op, errors.New(f.Error))
	}

	opts := (&schema.Script{Options: scenario.Options}).Apply(reconcile.Options{Menu: true})
	prims := rec.Primitives()
	if !opts.Menu {
		prims.Menu = nil
	}

	snaps := make([]state.Snapshot, len(scenario.Snapshots))
	for i, s := range scenario.Snapshots {
		snaps[i] = s.State()
	}

	exec := engine.NewExecutor(prims)
	eng := engine.New(engine.SliceSource(snaps), exec,
		engine.WithOptions(opts),
		engine.WithJournal(st),
		engine.WithMetrics(metrics.New()),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()
	if err := eng.Run(ctx); err != nil {
		return nil, fmt.Errorf("engine run: %w", err)
	}

	result := NewResult()
	result.Session = eng.Session()
	result.Transcript = rec.Transcript()
	for _, c := range state.Categories() {
		if lines := rec.Lines(c); len(lines) > 0 {
			result.Calls[c] = lines
		}
		result.MaxInFlight[c] = rec.MaxInFlight(c)
	}

	outcomes, err := st.ReadOutcomes(ctx, eng.Session())
	if err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}
	for _, o := range outcomes {
		result.Outcomes[o.Status]++
	}

	replay, err := engine.ReplaySession(ctx, st, eng.Session())
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	result.Deterministic = replay.Deterministic()

	for _, msg := range checkExpect(result, scenario.Expect) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// checkExpect compares call lines category by category.
func checkExpect(result *Result, expect map[string][]string) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	for _, c := range state.Categories() {
		want := expect[string(c)]
		got := result.Calls[c]
		if !slices.Equal(want, got) {
			errs = append(errs, fmt.Sprintf("expect %s: want %q, got %q", c, want, got))
		}
	}
	return errs
}
