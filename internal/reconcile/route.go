package reconcile

import (
	"slices"

	"github.com/roach88/uisync/internal/state"
)

// RouteSet is a set of route names.
type RouteSet map[string]struct{}

// NewRouteSet builds a set from names.
func NewRouteSet(names ...string) RouteSet {
	s := make(RouteSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set.
func (s RouteSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the set members in sorted order.
func (s RouteSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// DefaultSideRoutes are the routes that close without a transition animation.
func DefaultSideRoutes() RouteSet {
	return NewRouteSet("profile", "support", "transactions")
}

// Route computes the navigation effect for a route stack transition.
// Returns nil when the top route did not change.
//
// Side routes close without animation; pass nil to use DefaultSideRoutes.
func Route(prev, curr state.RouteStack, sides RouteSet) (*state.Effect, error) {
	prevTop, err := topOf("route", "previous", prev)
	if err != nil {
		return nil, err
	}
	currTop, err := topOf("route", "current", curr)
	if err != nil {
		return nil, err
	}

	if prevTop.Name == currTop.Name {
		return nil, nil
	}

	if sides == nil {
		sides = DefaultSideRoutes()
	}

	var effect state.Effect
	switch {
	case curr.Len() == 1 && !backToRoot(prev, curr):
		effect = state.SetRoot(currTop)
	case curr.Len() < prev.Len():
		effect = state.Pop(!sides.Contains(prevTop.Name))
	default:
		effect = state.Push(currTop)
	}
	return &effect, nil
}

// backToRoot reports whether curr is prev with its single top screen popped,
// i.e. the user went back from the second screen to an unchanged root.
func backToRoot(prev, curr state.RouteStack) bool {
	return prev.Len() == 2 && curr.Len() == 1 && prev[0].Name == curr[0].Name
}
