package state

import "fmt"

// Category groups effects that must never run concurrently with each other.
// Each category is executed on its own serialized lane.
type Category string

const (
	CategoryRoute  Category = "route"
	CategoryToast  Category = "toast"
	CategoryLoader Category = "loader"
	CategoryModal  Category = "modal"
	CategoryMenu   Category = "menu"
)

// Categories returns every category in a fixed order.
func Categories() []Category {
	return []Category{CategoryRoute, CategoryToast, CategoryLoader, CategoryModal, CategoryMenu}
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// EffectKind tags an Effect.
type EffectKind string

const (
	EffectSetRoot  EffectKind = "set_root"
	EffectPush     EffectKind = "push"
	EffectPop      EffectKind = "pop"
	EffectShow     EffectKind = "show"
	EffectHide     EffectKind = "hide"
	EffectSetSwipe EffectKind = "set_swipe"
)

// Effect is an imperative instruction to be realized against a UI primitive.
//
// Only the fields relevant to Kind are set:
//   - set_root, push: Route
//   - pop: Animated
//   - show: Overlay, Content
//   - hide: Overlay
//   - set_swipe: Enabled
type Effect struct {
	Kind     EffectKind  `json:"kind" yaml:"kind"`
	Route    *Route      `json:"route,omitempty" yaml:"route,omitempty"`
	Animated bool        `json:"animated,omitempty" yaml:"animated,omitempty"`
	Overlay  OverlayKind `json:"overlay,omitempty" yaml:"overlay,omitempty"`
	Content  string      `json:"content,omitempty" yaml:"content,omitempty"`
	Enabled  bool        `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// SetRoot replaces the whole navigation stack with route, without animation.
func SetRoot(route Route) Effect {
	return Effect{Kind: EffectSetRoot, Route: &route}
}

// Push navigates forward to route.
func Push(route Route) Effect {
	return Effect{Kind: EffectPush, Route: &route}
}

// Pop navigates back one screen.
func Pop(animated bool) Effect {
	return Effect{Kind: EffectPop, Animated: animated}
}

// Show opens an overlay of the given kind with content.
func Show(kind OverlayKind, content string) Effect {
	return Effect{Kind: EffectShow, Overlay: kind, Content: content}
}

// Hide closes the open overlay of the given kind.
func Hide(kind OverlayKind) Effect {
	return Effect{Kind: EffectHide, Overlay: kind}
}

// SetSwipe enables or disables the side menu swipe gesture.
func SetSwipe(enabled bool) Effect {
	return Effect{Kind: EffectSetSwipe, Enabled: enabled}
}

// Category returns the lane this effect is executed on.
func (e Effect) Category() Category {
	switch e.Kind {
	case EffectSetRoot, EffectPush, EffectPop:
		return CategoryRoute
	case EffectShow, EffectHide:
		return e.Overlay.Category()
	case EffectSetSwipe:
		return CategoryMenu
	}
	return ""
}

// String renders the effect the way it appears in logs and traces,
// e.g. push(B), pop(animated=true), show(toast,"saved").
func (e Effect) String() string {
	switch e.Kind {
	case EffectSetRoot, EffectPush:
		name := ""
		if e.Route != nil {
			name = e.Route.Name
		}
		return fmt.Sprintf("%s(%s)", e.Kind, name)
	case EffectPop:
		return fmt.Sprintf("pop(animated=%t)", e.Animated)
	case EffectShow:
		return fmt.Sprintf("show(%s,%q)", e.Overlay, e.Content)
	case EffectHide:
		return fmt.Sprintf("hide(%s)", e.Overlay)
	case EffectSetSwipe:
		return fmt.Sprintf("set_swipe(%t)", e.Enabled)
	}
	return string(e.Kind)
}
