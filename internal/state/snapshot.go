package state

import (
	"errors"
	"fmt"
)

// ErrEmptyStack is returned when the top of an empty route stack is requested.
// A well-behaved snapshot source never produces an empty stack.
var ErrEmptyStack = errors.New("route stack is empty")

// Params are the opaque navigation parameters attached to a route.
// Values are limited to strings, bools, integers, []any and map[string]any.
type Params map[string]any

// Route identifies a screen and the params it is opened with.
type Route struct {
	Name   string `json:"name" yaml:"name"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// RouteStack is the navigation history, oldest first.
// The last element is the currently visible screen.
type RouteStack []Route

// Top returns the currently visible route.
func (s RouteStack) Top() (Route, error) {
	if len(s) == 0 {
		return Route{}, ErrEmptyStack
	}
	return s[len(s)-1], nil
}

// Len returns the depth of the stack.
func (s RouteStack) Len() int {
	return len(s)
}

// Names returns the route names in stack order.
func (s RouteStack) Names() []string {
	names := make([]string, len(s))
	for i, r := range s {
		names[i] = r.Name
	}
	return names
}

// OverlayKind names one of the transient overlay surfaces.
type OverlayKind string

const (
	OverlayToast  OverlayKind = "toast"
	OverlayLoader OverlayKind = "loader"
	OverlayModal  OverlayKind = "modal"
)

// OverlayKinds returns every overlay kind in a fixed order.
func OverlayKinds() []OverlayKind {
	return []OverlayKind{OverlayToast, OverlayLoader, OverlayModal}
}

// Category returns the effect category that serializes this overlay kind.
func (k OverlayKind) Category() Category {
	return Category(k)
}

// OverlayState says whether an overlay should be visible and with what content.
// Content is the label for toasts and loaders; modals leave it empty.
type OverlayState struct {
	IsShown bool   `json:"is_shown" yaml:"is_shown"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Snapshot is one immutable whole-state value delivered by the snapshot source.
type Snapshot struct {
	Routes RouteStack   `json:"routes" yaml:"routes"`
	Toast  OverlayState `json:"toast" yaml:"toast"`
	Loader OverlayState `json:"loader" yaml:"loader"`
	Modal  OverlayState `json:"modal" yaml:"modal"`
}

// Overlay returns the state of the given overlay kind.
// Unknown kinds report a hidden overlay.
func (s Snapshot) Overlay(kind OverlayKind) OverlayState {
	switch kind {
	case OverlayToast:
		return s.Toast
	case OverlayLoader:
		return s.Loader
	case OverlayModal:
		return s.Modal
	}
	return OverlayState{}
}

// Validate checks the invariants the reconcilers rely on.
func (s Snapshot) Validate() error {
	if len(s.Routes) == 0 {
		return ErrEmptyStack
	}
	for i, r := range s.Routes {
		if r.Name == "" {
			return fmt.Errorf("route %d: name is required", i)
		}
	}
	return nil
}

// Pair is one transition between consecutive snapshots.
// Seq is the logical sequence number of the transition, starting at 1.
type Pair struct {
	Seq  int64
	Prev Snapshot
	Curr Snapshot
}
