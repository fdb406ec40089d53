package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/uisync/internal/metrics"
	"github.com/roach88/uisync/internal/state"
	"github.com/roach88/uisync/internal/ui"
)

// Status is the completion status of one effect.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped" // an earlier effect in the same job failed
)

// PlannedEffect is an effect bound to its position in a plan.
type PlannedEffect struct {
	ID       string // content-addressed, see state.EffectID
	PairSeq  int64
	Category state.Category
	Ordinal  int // position within the category's list for this pair
	Effect   state.Effect
}

// Job is the ordered effect list one pair produced for one category.
type Job struct {
	Session  string
	PairSeq  int64
	Category state.Category
	Effects  []PlannedEffect
}

// Outcome reports how one effect ended.
type Outcome struct {
	Session string
	Seq     int64 // clock value when the outcome was recorded
	Status  Status
	Err     error // *DelegationError when Status is StatusFailed
	PlannedEffect
}

// OutcomeFunc receives outcomes. It is called from lane goroutines,
// possibly concurrently for different categories.
type OutcomeFunc func(Outcome)

// lane serializes one category. Only its worker goroutine touches handle.
type lane struct {
	category state.Category
	jobs     *queue[Job]
	inFlight atomic.Int32
	peak     atomic.Int32
	open     atomic.Bool
	handle   ui.OverlayHandle
}

func (l *lane) setHandle(h ui.OverlayHandle) {
	l.handle = h
	l.open.Store(h != nil)
}

// Executor realizes planned effects against the UI primitives.
//
// Each category has its own lane: a FIFO of jobs drained by one worker.
// Effects in a lane run strictly one after another, each awaiting its
// primitive's completion, so a category never has two delegations in
// flight. Lanes run concurrently with no ordering between them.
//
// Failure policy: no retry. A failed effect is reported, its overlay
// handle is cleared, the rest of its job is skipped, and later jobs run.
type Executor struct {
	prims     ui.Primitives
	lanes     map[state.Category]*lane // fixed after construction
	clock     *Clock
	metrics   *metrics.Recorder
	observers []OutcomeFunc

	executed atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithOutcomeFunc registers a callback for every outcome.
func WithOutcomeFunc(f OutcomeFunc) ExecutorOption {
	return func(x *Executor) {
		x.observers = append(x.observers, f)
	}
}

// WithExecutorMetrics records delegation metrics.
func WithExecutorMetrics(m *metrics.Recorder) ExecutorOption {
	return func(x *Executor) {
		x.metrics = m
	}
}

// NewExecutor creates lanes for every category the primitives support:
// route needs a Navigator, each overlay kind its controller, menu a Menu.
func NewExecutor(prims ui.Primitives, opts ...ExecutorOption) *Executor {
	x := &Executor{
		prims: prims,
		lanes: make(map[state.Category]*lane),
		clock: NewClock(),
	}

	if prims.Navigator != nil {
		x.addLane(state.CategoryRoute)
	}
	for _, kind := range state.OverlayKinds() {
		if prims.Overlays[kind] != nil {
			x.addLane(kind.Category())
		}
	}
	if prims.Menu != nil {
		x.addLane(state.CategoryMenu)
	}

	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Executor) addLane(c state.Category) {
	x.lanes[c] = &lane{category: c, jobs: newQueue[Job]()}
}

// Has reports whether the category has a lane.
func (x *Executor) Has(c state.Category) bool {
	return x.lanes[c] != nil
}

// Submit queues a job on its category's lane. Never blocks.
func (x *Executor) Submit(job Job) error {
	l := x.lanes[job.Category]
	if l == nil {
		return &RuntimeError{Code: ErrCodeNoLane, Message: "no primitive for category", Session: job.Session, Category: job.Category}
	}
	if !l.jobs.Enqueue(job) {
		return &RuntimeError{Code: ErrCodeLaneClosed, Message: "executor is shutting down", Session: job.Session, Category: job.Category}
	}
	x.metrics.SetQueueDepth(l.category, l.jobs.Len())
	return nil
}

// Close stops accepting jobs. Queued jobs still run; Run returns once
// every lane has drained.
func (x *Executor) Close() {
	for _, l := range x.lanes {
		l.jobs.Close()
	}
}

// Run drives every lane until Close has been called and all queued jobs
// are done, or ctx is cancelled. Call it once.
func (x *Executor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range state.Categories() {
		l := x.lanes[c]
		if l == nil {
			continue
		}
		g.Go(func() error {
			return x.work(ctx, l)
		})
	}
	return g.Wait()
}

func (x *Executor) work(ctx context.Context, l *lane) error {
	for {
		job, ok := l.jobs.TryDequeue()
		if ok {
			x.metrics.SetQueueDepth(l.category, l.jobs.Len())
			x.runJob(ctx, l, job)
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		if l.jobs.Drained() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.jobs.Wait():
		}
	}
}

func (x *Executor) runJob(ctx context.Context, l *lane, job Job) {
	failed := false
	for _, pe := range job.Effects {
		if failed {
			x.skipped.Inc()
			x.metrics.Skipped(pe.Effect)
			x.report(job.Session, pe, StatusSkipped, nil)
			continue
		}

		start := time.Now()
		err := x.apply(ctx, l, pe.Effect)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			failed = true
			x.failed.Inc()
			x.metrics.Failed(pe.Effect, elapsed)
			derr := &DelegationError{Category: l.category, Effect: pe.Effect, Err: err}
			slog.Error("delegation failed",
				"session", job.Session,
				"pair", job.PairSeq,
				"category", l.category,
				"effect", pe.Effect.String(),
				"error", err,
			)
			x.report(job.Session, pe, StatusFailed, derr)
			continue
		}

		x.executed.Inc()
		x.metrics.Executed(pe.Effect, elapsed)
		slog.Debug("effect executed",
			"session", job.Session,
			"pair", job.PairSeq,
			"category", l.category,
			"effect", pe.Effect.String(),
		)
		x.report(job.Session, pe, StatusOK, nil)
	}
}

func (x *Executor) report(session string, pe PlannedEffect, status Status, err error) {
	o := Outcome{
		Session:       session,
		Seq:           x.clock.Next(),
		Status:        status,
		Err:           err,
		PlannedEffect: pe,
	}
	for _, f := range x.observers {
		f(o)
	}
}

// apply performs one effect and returns once the UI has settled.
func (x *Executor) apply(ctx context.Context, l *lane, e state.Effect) error {
	switch e.Kind {
	case state.EffectSetRoot:
		if e.Route == nil {
			return fmt.Errorf("set_root without route")
		}
		return x.delegate(ctx, l, func(ctx context.Context) error {
			return x.prims.Navigator.SetRoot(ctx, e.Route.Name, e.Route.Params, ui.NavOptions{Animate: false})
		})

	case state.EffectPush:
		if e.Route == nil {
			return fmt.Errorf("push without route")
		}
		return x.delegate(ctx, l, func(ctx context.Context) error {
			return x.prims.Navigator.Push(ctx, e.Route.Name, e.Route.Params)
		})

	case state.EffectPop:
		return x.delegate(ctx, l, func(ctx context.Context) error {
			return x.prims.Navigator.Pop(ctx, ui.NavOptions{Animate: e.Animated})
		})

	case state.EffectShow:
		if stale := l.handle; stale != nil {
			slog.Warn("overlay already open, dismissing it before show", "overlay", e.Overlay)
			l.setHandle(nil)
			if err := x.delegate(ctx, l, stale.Dismiss); err != nil {
				return err
			}
		}
		h, err := x.prims.Overlays[e.Overlay].Create(e.Content)
		if err != nil {
			return fmt.Errorf("create %s: %w", e.Overlay, err)
		}
		l.setHandle(h)
		if err := x.delegate(ctx, l, h.Present); err != nil {
			l.setHandle(nil)
			return err
		}
		return nil

	case state.EffectHide:
		h := l.handle
		if h == nil {
			slog.Debug("hide with no open overlay", "overlay", e.Overlay)
			return nil
		}
		// Cleared even if Dismiss fails: the handle is never reused.
		l.setHandle(nil)
		return x.delegate(ctx, l, h.Dismiss)

	case state.EffectSetSwipe:
		return x.delegate(ctx, l, func(ctx context.Context) error {
			return x.prims.Menu.SetSwipeEnabled(ctx, e.Enabled)
		})
	}
	return fmt.Errorf("unknown effect kind %q", e.Kind)
}

// delegate wraps one primitive call with in-flight accounting.
func (x *Executor) delegate(ctx context.Context, l *lane, call func(context.Context) error) error {
	n := l.inFlight.Inc()
	for {
		peak := l.peak.Load()
		if n <= peak || l.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	x.metrics.SetInFlight(l.category, n)
	defer func() {
		x.metrics.SetInFlight(l.category, l.inFlight.Dec())
	}()

	return call(ctx)
}

// InFlight returns the number of delegations awaiting completion.
func (x *Executor) InFlight(c state.Category) int32 {
	if l := x.lanes[c]; l != nil {
		return l.inFlight.Load()
	}
	return 0
}

// PeakInFlight returns the highest InFlight value observed so far.
func (x *Executor) PeakInFlight(c state.Category) int32 {
	if l := x.lanes[c]; l != nil {
		return l.peak.Load()
	}
	return 0
}

// Open reports whether the executor holds a live overlay handle for kind.
func (x *Executor) Open(kind state.OverlayKind) bool {
	if l := x.lanes[kind.Category()]; l != nil {
		return l.open.Load()
	}
	return false
}

// Stats returns how many effects completed, failed and were skipped.
func (x *Executor) Stats() (executed, failed, skipped int64) {
	return x.executed.Load(), x.failed.Load(), x.skipped.Load()
}
