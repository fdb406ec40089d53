package reconcile

import "github.com/roach88/uisync/internal/state"

// Options tune the reconcilers. The zero value uses the defaults and skips
// the menu category.
type Options struct {
	SideRoutes    RouteSet // nil means DefaultSideRoutes
	SwipeDisabled RouteSet // nil means DefaultSwipeDisabledRoutes
	Menu          bool     // plan set_swipe effects
}

// Plan holds the effects computed for one pair, grouped by category.
// Within a category the order is the execution order.
type Plan struct {
	Seq     int64
	Effects map[state.Category][]state.Effect
}

// For returns the effects planned for a category.
func (p Plan) For(c state.Category) []state.Effect {
	return p.Effects[c]
}

// Len returns the total number of planned effects.
func (p Plan) Len() int {
	n := 0
	for _, effects := range p.Effects {
		n += len(effects)
	}
	return n
}

// Empty reports whether the pair needs no UI work at all.
func (p Plan) Empty() bool {
	return p.Len() == 0
}

// Ordered returns every planned effect, categories in state.Categories order.
func (p Plan) Ordered() []state.Effect {
	var out []state.Effect
	for _, c := range state.Categories() {
		out = append(out, p.Effects[c]...)
	}
	return out
}

// Reconcile runs every reconciler on one pair.
//
// A malformed route stack yields a PreconditionViolation, but overlay
// effects are still planned: the overlay reconcilers do not look at routes.
func Reconcile(pair state.Pair, opts Options) (Plan, error) {
	plan := Plan{Seq: pair.Seq, Effects: make(map[state.Category][]state.Effect)}

	var firstErr error
	route, err := Route(pair.Prev.Routes, pair.Curr.Routes, opts.SideRoutes)
	if err != nil {
		firstErr = err
	} else if route != nil {
		plan.Effects[state.CategoryRoute] = []state.Effect{*route}
	}

	for _, kind := range state.OverlayKinds() {
		if effects := Overlay(kind, pair.Prev.Overlay(kind), pair.Curr.Overlay(kind)); len(effects) > 0 {
			plan.Effects[kind.Category()] = effects
		}
	}

	if opts.Menu && firstErr == nil {
		swipe, err := Swipe(pair.Prev.Routes, pair.Curr.Routes, opts.SwipeDisabled)
		if err != nil {
			firstErr = err
		} else if swipe != nil {
			plan.Effects[state.CategoryMenu] = []state.Effect{*swipe}
		}
	}

	return plan, firstErr
}
