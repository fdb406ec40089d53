package reconcile

import "github.com/roach88/uisync/internal/state"

// Overlay computes the ordered effects for one overlay kind.
// The result has zero, one or two effects; when it has two, the hide must
// complete before the show starts.
func Overlay(kind state.OverlayKind, prev, curr state.OverlayState) []state.Effect {
	switch {
	case !prev.IsShown && !curr.IsShown:
		return nil
	case prev.IsShown && !curr.IsShown:
		return []state.Effect{state.Hide(kind)}
	case !prev.IsShown && curr.IsShown:
		return []state.Effect{state.Show(kind, curr.Content)}
	default:
		return []state.Effect{state.Hide(kind), state.Show(kind, curr.Content)}
	}
}
