package reconcile

import "github.com/roach88/uisync/internal/state"

// DefaultSwipeDisabledRoutes are the screens on which the side menu cannot be
// opened with a swipe (onboarding slides and the welcome screen).
func DefaultSwipeDisabledRoutes() RouteSet {
	return NewRouteSet("slide", "welcome")
}

// SwipeEnabled reports whether the side menu swipe gesture is allowed for a stack.
func SwipeEnabled(stack state.RouteStack, disabled RouteSet) (bool, error) {
	top, err := topOf("swipe", "current", stack)
	if err != nil {
		return false, err
	}
	if disabled == nil {
		disabled = DefaultSwipeDisabledRoutes()
	}
	return !disabled.Contains(top.Name), nil
}

// Swipe emits set_swipe only when the derived gesture state changes.
func Swipe(prev, curr state.RouteStack, disabled RouteSet) (*state.Effect, error) {
	was, err := SwipeEnabled(prev, disabled)
	if err != nil {
		return nil, err
	}
	now, err := SwipeEnabled(curr, disabled)
	if err != nil {
		return nil, err
	}
	if was == now {
		return nil, nil
	}
	effect := state.SetSwipe(now)
	return &effect, nil
}
