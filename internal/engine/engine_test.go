package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uisync/internal/metrics"
	"github.com/roach88/uisync/internal/reconcile"
	"github.com/roach88/uisync/internal/state"
	"github.com/roach88/uisync/internal/store"
	uitest "github.com/roach88/uisync/internal/testutil"
)

func withToast(s state.Snapshot, shown bool, content string) state.Snapshot {
	s.Toast = state.OverlayState{IsShown: shown, Content: content}
	return s
}

// run drives snapshots through a fresh engine and waits for it to drain.
func run(t *testing.T, rec *uitest.Recorder, snaps []state.Snapshot, opts ...Option) *Engine {
	t.Helper()
	exec := NewExecutor(rec.Primitives())
	opts = append([]Option{WithSessionGenerator(uitest.NewFixedSessionGenerator("sess-1"))}, opts...)
	e := New(SliceSource(snaps), exec, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	return e
}

func TestEngine_EndToEndScenario(t *testing.T) {
	rec := uitest.NewRecorder()
	s0 := snap("A")
	s1 := snap("A", "B")
	s2 := withToast(snap("A", "B"), true, "saved")
	s3 := snap("A")

	run(t, rec, []state.Snapshot{s0, s1, s2, s3})

	assert.Equal(t, []string{"push B", "pop animate=true"}, rec.Lines(state.CategoryRoute))
	assert.Equal(t, []string{`present "saved"`, "dismiss"}, rec.Lines(state.CategoryToast))
	assert.Empty(t, rec.Lines(state.CategoryMenu), "swipe state never changed")
}

func TestEngine_NoOpPairsProduceNothing(t *testing.T) {
	rec := uitest.NewRecorder()
	s := withToast(snap("A", "B"), false, "x")
	run(t, rec, []state.Snapshot{s, s, s})
	assert.Empty(t, rec.Calls())
}

func TestEngine_RepeatedShownOverlayIsReopened(t *testing.T) {
	rec := uitest.NewRecorder()
	s := withToast(snap("A"), true, "x")
	run(t, rec, []state.Snapshot{snap("A"), s, s})
	assert.Equal(t, []string{`present "x"`, "dismiss", `present "x"`}, rec.Lines(state.CategoryToast))
	assert.Empty(t, rec.Lines(state.CategoryRoute))
}

func TestEngine_FirstSnapshotOnlyPrimes(t *testing.T) {
	rec := uitest.NewRecorder()
	var plans []reconcile.Plan
	run(t, rec, []state.Snapshot{withToast(snap("welcome"), true, "hi")},
		WithPlanFunc(func(p reconcile.Plan) { plans = append(plans, p) }))

	assert.Empty(t, plans)
	assert.Empty(t, rec.Calls(), "the initial snapshot is assumed to be on screen")
}

func TestEngine_MalformedSnapshotIsSkipped(t *testing.T) {
	rec := uitest.NewRecorder()
	m := metrics.New()

	run(t, rec, []state.Snapshot{
		snap("A"),
		{Toast: state.OverlayState{IsShown: true, Content: "ignored"}}, // empty stack
		snap("A", "B"),
	}, WithMetrics(m))

	assert.Equal(t, []string{"push B"}, rec.Lines(state.CategoryRoute), "pair is (A, A>B), not (bad, A>B)")
	assert.Empty(t, rec.Lines(state.CategoryToast))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MalformedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PairsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EffectsExecuted.WithLabelValues("route", "push")))
}

func TestEngine_FailureDoesNotStopLaterPairs(t *testing.T) {
	rec := uitest.NewRecorder()
	rec.FailNext(state.CategoryRoute, "push", errors.New("transition rejected"))

	run(t, rec, []state.Snapshot{snap("A"), snap("A", "B"), snap("A"), snap("A", "C")})

	assert.Equal(t, []string{"push B !transition rejected", "pop animate=true", "push C"}, rec.Lines(state.CategoryRoute))
}

func TestEngine_SideRoutePopsWithoutAnimation(t *testing.T) {
	rec := uitest.NewRecorder()
	run(t, rec, []state.Snapshot{snap("home", "profile"), snap("home")})
	assert.Equal(t, []string{"pop animate=false"}, rec.Lines(state.CategoryRoute))

	rec = uitest.NewRecorder()
	run(t, rec, []state.Snapshot{snap("home", "cart"), snap("home")},
		WithOptions(reconcile.Options{SideRoutes: reconcile.NewRouteSet("cart")}))
	assert.Equal(t, []string{"pop animate=false"}, rec.Lines(state.CategoryRoute))
}

func TestEngine_MenuSwipe(t *testing.T) {
	rec := uitest.NewRecorder()
	run(t, rec, []state.Snapshot{snap("slide"), snap("welcome"), snap("home"), snap("home", "slide")})
	assert.Equal(t, []string{"set_root welcome", "set_root home", "push slide"}, rec.Lines(state.CategoryRoute))
	assert.Equal(t, []string{"set_swipe true", "set_swipe false"}, rec.Lines(state.CategoryMenu))
}

func TestEngine_SerializesBurstFromFeed(t *testing.T) {
	rec := uitest.NewRecorder()
	rec.SetDelay(time.Millisecond)
	exec := NewExecutor(rec.Primitives())
	feed := NewFeed()
	e := New(feed, exec)

	var want []string
	feed.Publish(snap("A"))
	for i := 0; i < 10; i++ {
		feed.Publish(withToast(snap("A", "B"), true, "t"))
		feed.Publish(snap("A"))
		want = append(want, "push B", "pop animate=true")
	}
	feed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	assert.Equal(t, want, rec.Lines(state.CategoryRoute))
	assert.Len(t, rec.Lines(state.CategoryToast), 20)
	assert.Equal(t, 1, rec.MaxInFlight(state.CategoryRoute))
	assert.Equal(t, 1, rec.MaxInFlight(state.CategoryToast))
	assert.Equal(t, int32(1), exec.PeakInFlight(state.CategoryToast))
	assert.NotEmpty(t, e.Session())
}

func TestEngine_CancelReturnsContextError(t *testing.T) {
	rec := uitest.NewRecorder()
	feed := NewFeed()
	e := New(feed, NewExecutor(rec.Primitives()))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEngine_JournalAndReplay(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer st.Close()

	rec := uitest.NewRecorder()
	rec.FailNext(state.CategoryToast, "dismiss", errors.New("stuck"))
	snaps := []state.Snapshot{
		snap("A"),
		withToast(snap("A", "B"), true, "saved"),
		{}, // malformed, not journaled
		withToast(snap("A"), true, "again"),
		snap("home"),
	}
	e := run(t, rec, snaps, WithJournal(st))

	ctx := context.Background()
	journaled, err := st.ReadSnapshots(ctx, e.Session())
	require.NoError(t, err)
	assert.Len(t, journaled, 4)

	effects, err := st.ReadEffects(ctx, e.Session())
	require.NoError(t, err)
	outcomes, err := st.ReadOutcomes(ctx, e.Session())
	require.NoError(t, err)
	assert.Len(t, outcomes, len(effects), "every journaled effect has an outcome")

	statuses := map[string]int{}
	for _, o := range outcomes {
		statuses[o.Status]++
	}
	assert.Equal(t, 1, statuses[store.StatusFailed])
	assert.Equal(t, 1, statuses[store.StatusSkipped])

	result, err := ReplaySession(ctx, st, e.Session())
	require.NoError(t, err)
	assert.True(t, result.Deterministic(), "missing=%v extra=%v corrupt=%v", result.Missing, result.Extra, result.Corrupt)
	assert.Len(t, result.Planned, len(effects))
	assert.Equal(t, 4, result.Snapshots)
}

func TestReplay_MatchesLivePlans(t *testing.T) {
	snaps := []state.Snapshot{snap("A"), snap("A", "B"), withToast(snap("A", "B"), true, "x"), snap("A")}

	var live []state.Effect
	run(t, uitest.NewRecorder(), snaps, WithPlanFunc(func(p reconcile.Plan) {
		live = append(live, p.Ordered()...)
	}))

	replayed, err := Replay("sess-1", snaps, reconcile.Options{Menu: true})
	require.NoError(t, err)

	var got []state.Effect
	for _, pe := range replayed {
		got = append(got, pe.Effect)
	}
	assert.Equal(t, live, got)

	again, err := Replay("sess-1", snaps, reconcile.Options{Menu: true})
	require.NoError(t, err)
	assert.Equal(t, replayed, again)
}

func TestOptionsFromSession_RoundTrip(t *testing.T) {
	opts := reconcile.Options{
		SideRoutes:    reconcile.NewRouteSet("profile"),
		SwipeDisabled: reconcile.NewRouteSet(),
		Menu:          true,
	}
	got := OptionsFromSession(SessionRecord("s", opts))
	assert.Equal(t, opts.SideRoutes.Names(), got.SideRoutes.Names())
	assert.NotNil(t, got.SwipeDisabled, "an empty set stays empty rather than reverting to defaults")
	assert.Empty(t, got.SwipeDisabled.Names())
	assert.True(t, got.Menu)
}

func TestEngine_WithClockStampsJournalAfterStart(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	e := run(t, uitest.NewRecorder(), []state.Snapshot{snap("A"), snap("A", "B")},
		WithJournal(st), WithClock(NewClockAt(100)))

	ctx := context.Background()
	snaps, err := st.ReadSnapshots(ctx, e.Session())
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Greater(t, snaps[0].Seq, int64(100))
	assert.Less(t, snaps[0].Seq, snaps[1].Seq)

	last, err := st.LastSeq(ctx, e.Session())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, last, snaps[1].Seq)
}

func TestReplay_SkipsMalformedSnapshots(t *testing.T) {
	snaps := []state.Snapshot{{}, snap("A"), {}, snap("A", "B")}

	planned, err := Replay("sess-1", snaps, reconcile.Options{Menu: true})
	require.NoError(t, err)
	require.Len(t, planned, 1)
	assert.Equal(t, int64(1), planned[0].PairSeq)
	assert.Equal(t, state.Push(state.Route{Name: "B"}), planned[0].Effect)
}
