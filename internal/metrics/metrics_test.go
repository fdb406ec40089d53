package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uisync/internal/state"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.Snapshot()
	r.Snapshot()
	r.Malformed()
	r.Pair()
	r.Planned(state.Push(state.Route{Name: "B"}))
	r.Planned(state.Show(state.OverlayToast, "saved"))
	r.Executed(state.Push(state.Route{Name: "B"}), 0.01)
	r.Failed(state.Hide(state.OverlayToast), 0.02)
	r.Skipped(state.Show(state.OverlayToast, "x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.SnapshotsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.MalformedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PairsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EffectsPlanned.WithLabelValues("route", "push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EffectsPlanned.WithLabelValues("toast", "show")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EffectsExecuted.WithLabelValues("route", "push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EffectsFailed.WithLabelValues("toast", "hide")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.EffectsSkipped.WithLabelValues("toast", "show")))
}

func TestRecorder_Gauges(t *testing.T) {
	r := New()
	r.SetInFlight(state.CategoryLoader, 1)
	r.SetQueueDepth(state.CategoryRoute, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.InFlight.WithLabelValues("loader")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.QueueDepth.WithLabelValues("route")))

	r.SetInFlight(state.CategoryLoader, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.InFlight.WithLabelValues("loader")))
}

func TestRecorder_NilIsNoOp(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Snapshot()
		r.Malformed()
		r.Pair()
		r.Planned(state.Pop(true))
		r.Executed(state.Pop(true), 1)
		r.Failed(state.Pop(true), 1)
		r.Skipped(state.Pop(true))
		r.SetInFlight(state.CategoryRoute, 1)
		r.SetQueueDepth(state.CategoryRoute, 1)
	})
	assert.Nil(t, r.Registry())
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.Pair()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "uisync_pairs_total 1"))
}
