// Package ui defines the imperative UI primitives the effect executor drives,
// and console implementations of them used by the simulator.
//
// Every blocking method returns once the UI has visually settled. A non-nil
// error is a rejected completion.
package ui

import (
	"context"

	"github.com/roach88/uisync/internal/state"
)

// NavOptions controls a navigation transition.
type NavOptions struct {
	Animate bool
}

// Navigator is the navigation stack primitive.
type Navigator interface {
	SetRoot(ctx context.Context, name string, params state.Params, opts NavOptions) error
	Push(ctx context.Context, name string, params state.Params) error
	Pop(ctx context.Context, opts NavOptions) error
}

// OverlayHandle is one live overlay instance returned by an OverlayController.
type OverlayHandle interface {
	Present(ctx context.Context) error
	Dismiss(ctx context.Context) error
}

// OverlayController creates overlay instances of one kind.
type OverlayController interface {
	Create(content string) (OverlayHandle, error)
}

// Menu is the side menu primitive.
type Menu interface {
	SetSwipeEnabled(ctx context.Context, enabled bool) error
}

// Primitives bundles the capabilities handed to the executor.
// Overlays without a controller and a nil Menu disable their categories.
type Primitives struct {
	Navigator Navigator
	Overlays  map[state.OverlayKind]OverlayController
	Menu      Menu
}
