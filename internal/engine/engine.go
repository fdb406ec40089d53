package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/uisync/internal/metrics"
	"github.com/roach88/uisync/internal/reconcile"
	"github.com/roach88/uisync/internal/state"
	"github.com/roach88/uisync/internal/store"
)

// Journal persists a session. Implemented by *store.Store.
type Journal interface {
	WriteSession(ctx context.Context, rec store.SessionRecord) error
	WriteSnapshot(ctx context.Context, rec store.SnapshotRecord) error
	WriteEffects(ctx context.Context, recs []store.EffectRecord) error
	WriteOutcome(ctx context.Context, rec store.OutcomeRecord) error
}

// PlanFunc observes every plan, including empty ones.
type PlanFunc func(plan reconcile.Plan)

// Engine is the single-writer reconciliation loop.
//
// Run reads snapshots from the source, pairs them, plans effects and hands
// each category's effects to the executor. It never waits for the UI, so
// new snapshots are planned while earlier transitions are still settling.
//
// Thread-safety model:
//   - Run(): must be called once, from one goroutine
//   - Session(): safe from any goroutine
type Engine struct {
	source  Source
	exec    *Executor
	opts    reconcile.Options
	clock   *Clock
	session string
	journal Journal
	metrics *metrics.Recorder
	onPlan  PlanFunc

	sessionGen SessionGenerator
	sequencer  *reconcile.Sequencer
}

// Option configures an Engine.
type Option func(*Engine)

// WithOptions sets the reconciler options. Nil route sets use the defaults.
func WithOptions(opts reconcile.Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithJournal persists the session.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithSessionGenerator overrides the UUIDv7 session token generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(e *Engine) {
		e.sessionGen = g
	}
}

// WithMetrics records pipeline metrics. The executor shares the recorder
// unless it was given its own.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock sets the logical clock, e.g. to resume a journal.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithPlanFunc observes every computed plan.
func WithPlanFunc(f PlanFunc) Option {
	return func(e *Engine) {
		e.onPlan = f
	}
}

// New creates an engine reading from source and executing on exec.
//
// The menu category is planned when opts.Menu is set or exec has a menu lane.
func New(source Source, exec *Executor, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		exec:       exec,
		clock:      NewClock(),
		sessionGen: UUIDv7Generator{},
		sequencer:  reconcile.NewSequencer(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.opts.SideRoutes == nil {
		e.opts.SideRoutes = reconcile.DefaultSideRoutes()
	}
	if e.opts.SwipeDisabled == nil {
		e.opts.SwipeDisabled = reconcile.DefaultSwipeDisabledRoutes()
	}
	if exec.Has(state.CategoryMenu) {
		e.opts.Menu = true
	}

	e.session = e.sessionGen.Generate()
	exec.clock = e.clock
	if exec.metrics == nil {
		exec.metrics = e.metrics
	}
	if e.journal != nil {
		exec.observers = append(exec.observers, e.journalOutcome)
	}
	return e
}

// Session returns this run's session token.
func (e *Engine) Session() string {
	return e.session
}

// Options returns the effective reconciler options.
func (e *Engine) Options() reconcile.Options {
	return e.opts
}

// Run processes snapshots until the source closes and every lane has
// drained, or ctx is cancelled.
//
// ERROR HANDLING: malformed snapshots, reconcile failures and journal
// write failures are logged and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "session", e.session, "lanes", e.laneNames())

	if e.journal != nil {
		if err := e.journal.WriteSession(ctx, SessionRecord(e.session, e.opts)); err != nil {
			return fmt.Errorf("journal session: %w", err)
		}
	}

	snapshots, err := e.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.exec.Run(gctx)
	})
	g.Go(func() error {
		defer e.exec.Close()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case s, ok := <-snapshots:
				if !ok {
					return nil
				}
				e.process(gctx, s)
			}
		}
	})

	err = g.Wait()
	executed, failed, skipped := e.exec.Stats()
	slog.Info("engine stopped",
		"session", e.session,
		"executed", executed,
		"failed", failed,
		"skipped", skipped,
	)
	return err
}

// process handles one snapshot. Only called from the Run goroutine.
func (e *Engine) process(ctx context.Context, s state.Snapshot) {
	if err := s.Validate(); err != nil {
		// A malformed snapshot never becomes the previous snapshot.
		e.metrics.Malformed()
		slog.Warn("malformed snapshot skipped", "session", e.session, "error", err)
		return
	}

	seq := e.clock.Next()
	e.metrics.Snapshot()
	if e.journal != nil {
		e.journalSnapshot(ctx, seq, s)
	}

	pair, ok := e.sequencer.Observe(s)
	if !ok {
		slog.Debug("sequencer primed", "session", e.session, "routes", s.Routes.Names())
		return
	}
	e.metrics.Pair()

	plan, err := reconcile.Reconcile(pair, e.opts)
	if err != nil {
		slog.Error("reconcile failed", "session", e.session, "pair", pair.Seq, "error", err)
	}
	if e.onPlan != nil {
		e.onPlan(plan)
	}

	for _, c := range state.Categories() {
		effects := plan.For(c)
		if len(effects) == 0 {
			continue
		}
		job, err := e.newJob(pair.Seq, c, effects)
		if err != nil {
			slog.Error("plan effects", "session", e.session, "pair", pair.Seq, "category", c, "error", err)
			continue
		}
		if e.journal != nil {
			e.journalEffects(ctx, job)
		}
		if err := e.exec.Submit(job); err != nil {
			slog.Warn("effects dropped", "session", e.session, "pair", pair.Seq, "category", c, "error", err)
		}
	}
}

func (e *Engine) newJob(pairSeq int64, c state.Category, effects []state.Effect) (Job, error) {
	job := Job{Session: e.session, PairSeq: pairSeq, Category: c}
	for i, eff := range effects {
		id, err := state.EffectID(e.session, pairSeq, i, eff)
		if err != nil {
			return Job{}, err
		}
		e.metrics.Planned(eff)
		job.Effects = append(job.Effects, PlannedEffect{
			ID:       id,
			PairSeq:  pairSeq,
			Category: c,
			Ordinal:  i,
			Effect:   eff,
		})
	}
	return job, nil
}

func (e *Engine) journalSnapshot(ctx context.Context, seq int64, s state.Snapshot) {
	digest, err := state.SnapshotDigest(s)
	if err == nil {
		err = e.journal.WriteSnapshot(ctx, store.SnapshotRecord{
			Session:  e.session,
			Seq:      seq,
			Digest:   digest,
			Snapshot: s,
		})
	}
	if err != nil {
		slog.Error("journal snapshot", "session", e.session, "seq", seq, "error", err)
	}
}

func (e *Engine) journalEffects(ctx context.Context, job Job) {
	recs := make([]store.EffectRecord, len(job.Effects))
	for i, pe := range job.Effects {
		recs[i] = store.EffectRecord{
			ID:       pe.ID,
			Session:  e.session,
			PairSeq:  pe.PairSeq,
			Seq:      e.clock.Next(),
			Category: pe.Category,
			Ordinal:  pe.Ordinal,
			Effect:   pe.Effect,
		}
	}
	if err := e.journal.WriteEffects(ctx, recs); err != nil {
		slog.Error("journal effects", "session", e.session, "pair", job.PairSeq, "error", err)
	}
}

// journalOutcome runs on lane goroutines. It uses a fresh context so the
// outcome of an effect interrupted by shutdown is still recorded.
func (e *Engine) journalOutcome(o Outcome) {
	rec := store.OutcomeRecord{
		EffectID: o.ID,
		Session:  o.Session,
		Seq:      o.Seq,
		Status:   string(o.Status),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	if err := e.journal.WriteOutcome(context.Background(), rec); err != nil {
		slog.Error("journal outcome", "session", o.Session, "effect", o.ID, "error", err)
	}
}

func (e *Engine) laneNames() []string {
	var names []string
	for _, c := range state.Categories() {
		if e.exec.Has(c) {
			names = append(names, string(c))
		}
	}
	return names
}

// SessionRecord describes a session and its effective options for the journal.
func SessionRecord(token string, opts reconcile.Options) store.SessionRecord {
	return store.SessionRecord{
		Token:         token,
		SideRoutes:    opts.SideRoutes.Names(),
		SwipeDisabled: opts.SwipeDisabled.Names(),
		Menu:          opts.Menu,
	}
}

// OptionsFromSession rebuilds reconciler options from a journaled session.
func OptionsFromSession(rec store.SessionRecord) reconcile.Options {
	return reconcile.Options{
		SideRoutes:    reconcile.NewRouteSet(rec.SideRoutes...),
		SwipeDisabled: reconcile.NewRouteSet(rec.SwipeDisabled...),
		Menu:          rec.Menu,
	}
}
