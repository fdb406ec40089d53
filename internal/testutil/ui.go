package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roach88/uisync/internal/state"
	"github.com/roach88/uisync/internal/ui"
)

// Call is one recorded UI primitive call.
type Call struct {
	Category state.Category
	Op       string // set_root, push, pop, present, dismiss, set_swipe
	Route    string
	Params   state.Params
	Animate  bool
	Content  string
	Enabled  bool
	Err      error
	Start    int64 // logical time the call began
	End      int64 // logical time the call settled
}

// String renders the call as one transcript line.
func (c Call) String() string {
	var s string
	switch c.Op {
	case "set_root":
		s = fmt.Sprintf("set_root %s", c.Route)
	case "push":
		s = fmt.Sprintf("push %s", c.Route)
	case "pop":
		s = fmt.Sprintf("pop animate=%t", c.Animate)
	case "present":
		s = fmt.Sprintf("present %q", c.Content)
	case "set_swipe":
		s = fmt.Sprintf("set_swipe %t", c.Enabled)
	default:
		s = c.Op
	}
	if c.Err != nil {
		s += " !" + c.Err.Error()
	}
	return s
}

// Recorder implements every UI primitive and records the calls.
//
// It can delay calls, block a category until released, and fail chosen
// operations, which is enough to exercise lane serialization and the
// executor's failure policy.
type Recorder struct {
	mu       sync.Mutex
	clock    *DeterministicClock
	calls    []Call
	delay    time.Duration
	gates    map[state.Category]chan struct{}
	failures map[string][]error
	inFlight map[state.Category]int
	peak     map[state.Category]int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		clock:    NewDeterministicClock(),
		gates:    make(map[state.Category]chan struct{}),
		failures: make(map[string][]error),
		inFlight: make(map[state.Category]int),
		peak:     make(map[state.Category]int),
	}
}

// Primitives returns a full primitive set backed by the recorder.
func (r *Recorder) Primitives() ui.Primitives {
	overlays := make(map[state.OverlayKind]ui.OverlayController)
	for _, kind := range state.OverlayKinds() {
		overlays[kind] = recOverlays{r: r, kind: kind}
	}
	return ui.Primitives{
		Navigator: recNavigator{r},
		Overlays:  overlays,
		Menu:      recMenu{r},
	}
}

// SetDelay makes every call take d to settle.
func (r *Recorder) SetDelay(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = d
}

// Block holds every call in category c until the returned release is called.
func (r *Recorder) Block(c state.Category) (release func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gate := make(chan struct{})
	r.gates[c] = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.gates, c)
			r.mu.Unlock()
			close(gate)
		})
	}
}

// FailNext makes the next op ("create", "present", "dismiss", "push", ...)
// in category c fail with err. Calls queue up: FailNext twice fails twice.
func (r *Recorder) FailNext(c state.Category, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := failureKey(c, op)
	r.failures[key] = append(r.failures[key], err)
}

func failureKey(c state.Category, op string) string {
	return string(c) + "/" + op
}

// takeFailure pops a pending failure. Caller holds mu.
func (r *Recorder) takeFailure(c state.Category, op string) error {
	key := failureKey(c, op)
	errs := r.failures[key]
	if len(errs) == 0 {
		return nil
	}
	r.failures[key] = errs[1:]
	return errs[0]
}

func (r *Recorder) record(ctx context.Context, c Call) error {
	r.mu.Lock()
	c.Start = r.clock.Next()
	r.inFlight[c.Category]++
	if r.inFlight[c.Category] > r.peak[c.Category] {
		r.peak[c.Category] = r.inFlight[c.Category]
	}
	err := r.takeFailure(c.Category, c.Op)
	gate := r.gates[c.Category]
	delay := r.delay
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	if delay > 0 && err == nil {
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			err = ctx.Err()
		}
		t.Stop()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight[c.Category]--
	c.End = r.clock.Next()
	c.Err = err
	r.calls = append(r.calls, c)
	return err
}

// Calls returns every call in completion order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsFor returns the calls of one category in completion order.
func (r *Recorder) CallsFor(c state.Category) []Call {
	var out []Call
	for _, call := range r.Calls() {
		if call.Category == c {
			out = append(out, call)
		}
	}
	return out
}

// Lines renders the calls of one category as transcript lines.
func (r *Recorder) Lines(c state.Category) []string {
	var out []string
	for _, call := range r.CallsFor(c) {
		out = append(out, call.String())
	}
	return out
}

// Transcript renders all calls grouped by category, categories in fixed
// order. Order across categories is not observable, so the grouped form
// is stable between runs.
func (r *Recorder) Transcript() string {
	var sb strings.Builder
	for _, c := range state.Categories() {
		for _, line := range r.Lines(c) {
			fmt.Fprintf(&sb, "%-6s %s\n", c, line)
		}
	}
	return sb.String()
}

// MaxInFlight returns the most concurrent calls ever seen in category c.
func (r *Recorder) MaxInFlight(c state.Category) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak[c]
}

// Reset forgets all calls, failures and peaks.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.failures = make(map[string][]error)
	r.peak = make(map[state.Category]int)
	r.clock.Reset()
}

type recNavigator struct{ r *Recorder }

func (n recNavigator) SetRoot(ctx context.Context, name string, params state.Params, opts ui.NavOptions) error {
	return n.r.record(ctx, Call{Category: state.CategoryRoute, Op: "set_root", Route: name, Params: params, Animate: opts.Animate})
}

func (n recNavigator) Push(ctx context.Context, name string, params state.Params) error {
	return n.r.record(ctx, Call{Category: state.CategoryRoute, Op: "push", Route: name, Params: params})
}

func (n recNavigator) Pop(ctx context.Context, opts ui.NavOptions) error {
	return n.r.record(ctx, Call{Category: state.CategoryRoute, Op: "pop", Animate: opts.Animate})
}

type recOverlays struct {
	r    *Recorder
	kind state.OverlayKind
}

func (o recOverlays) Create(content string) (ui.OverlayHandle, error) {
	o.r.mu.Lock()
	err := o.r.takeFailure(o.kind.Category(), "create")
	o.r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &recHandle{r: o.r, kind: o.kind, content: content}, nil
}

type recHandle struct {
	r       *Recorder
	kind    state.OverlayKind
	content string
}

func (h *recHandle) Present(ctx context.Context) error {
	return h.r.record(ctx, Call{Category: h.kind.Category(), Op: "present", Content: h.content})
}

func (h *recHandle) Dismiss(ctx context.Context) error {
	return h.r.record(ctx, Call{Category: h.kind.Category(), Op: "dismiss", Content: h.content})
}

type recMenu struct{ r *Recorder }

func (m recMenu) SetSwipeEnabled(ctx context.Context, enabled bool) error {
	return m.r.record(ctx, Call{Category: state.CategoryMenu, Op: "set_swipe", Enabled: enabled})
}
