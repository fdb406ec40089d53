// Package metrics exposes Prometheus instruments for the reconciliation
// engine. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/uisync/internal/state"
)

const namespace = "uisync"

// Recorder holds all engine metrics.
type Recorder struct {
	registry *prometheus.Registry

	// Pipeline metrics
	SnapshotsTotal  prometheus.Counter
	MalformedTotal  prometheus.Counter
	PairsTotal      prometheus.Counter
	EffectsPlanned  *prometheus.CounterVec
	EffectsExecuted *prometheus.CounterVec
	EffectsFailed   *prometheus.CounterVec
	EffectsSkipped  *prometheus.CounterVec

	// Lane metrics
	InFlight   *prometheus.GaugeVec
	QueueDepth *prometheus.GaugeVec
	Delegation *prometheus.HistogramVec
}

// New creates a recorder registered on its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,

		SnapshotsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshots accepted by the engine",
		}),
		MalformedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_malformed_total",
			Help:      "Snapshots rejected by validation",
		}),
		PairsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_total",
			Help:      "Snapshot pairs reconciled",
		}),
		EffectsPlanned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_planned_total",
			Help:      "Effects planned by the reconcilers",
		}, []string{"category", "kind"}),
		EffectsExecuted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_executed_total",
			Help:      "Effects whose delegation completed successfully",
		}, []string{"category", "kind"}),
		EffectsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_failed_total",
			Help:      "Effects whose delegation was rejected",
		}, []string{"category", "kind"}),
		EffectsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_skipped_total",
			Help:      "Effects skipped after an earlier failure in the same job",
		}, []string{"category", "kind"}),

		InFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delegations_in_flight",
			Help:      "Delegations currently awaiting UI completion",
		}, []string{"category"}),
		QueueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lane_queue_depth",
			Help:      "Jobs waiting on a category lane",
		}, []string{"category"}),
		Delegation: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delegation_duration_seconds",
			Help:      "Time from delegation to UI completion",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"category"}),
	}
}

// Registry returns the registry the metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Snapshot records an accepted snapshot.
func (r *Recorder) Snapshot() {
	if r == nil {
		return
	}
	r.SnapshotsTotal.Inc()
}

// Malformed records a rejected snapshot.
func (r *Recorder) Malformed() {
	if r == nil {
		return
	}
	r.MalformedTotal.Inc()
}

// Pair records a reconciled pair.
func (r *Recorder) Pair() {
	if r == nil {
		return
	}
	r.PairsTotal.Inc()
}

// Planned records a planned effect.
func (r *Recorder) Planned(e state.Effect) {
	if r == nil {
		return
	}
	r.EffectsPlanned.WithLabelValues(string(e.Category()), string(e.Kind)).Inc()
}

// Executed records a completed delegation.
func (r *Recorder) Executed(e state.Effect, seconds float64) {
	if r == nil {
		return
	}
	r.EffectsExecuted.WithLabelValues(string(e.Category()), string(e.Kind)).Inc()
	r.Delegation.WithLabelValues(string(e.Category())).Observe(seconds)
}

// Failed records a rejected delegation.
func (r *Recorder) Failed(e state.Effect, seconds float64) {
	if r == nil {
		return
	}
	r.EffectsFailed.WithLabelValues(string(e.Category()), string(e.Kind)).Inc()
	r.Delegation.WithLabelValues(string(e.Category())).Observe(seconds)
}

// Skipped records an effect dropped after an earlier failure.
func (r *Recorder) Skipped(e state.Effect) {
	if r == nil {
		return
	}
	r.EffectsSkipped.WithLabelValues(string(e.Category()), string(e.Kind)).Inc()
}

// SetInFlight sets the in-flight gauge of a category.
func (r *Recorder) SetInFlight(c state.Category, n int32) {
	if r == nil {
		return
	}
	r.InFlight.WithLabelValues(string(c)).Set(float64(n))
}

// SetQueueDepth sets the queue depth gauge of a category.
func (r *Recorder) SetQueueDepth(c state.Category, n int) {
	if r == nil {
		return
	}
	r.QueueDepth.WithLabelValues(string(c)).Set(float64(n))
}
