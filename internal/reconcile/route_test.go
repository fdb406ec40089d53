package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uisync/internal/state"
)

func stack(names ...string) state.RouteStack {
	s := make(state.RouteStack, len(names))
	for i, n := range names {
		s[i] = state.Route{Name: n}
	}
	return s
}

func TestRoute_SameTopIsNoOp(t *testing.T) {
	for _, tc := range []struct {
		name       string
		prev, curr state.RouteStack
	}{
		{"identical", stack("A", "B"), stack("A", "B")},
		{"same top, different depth", stack("A", "B"), stack("C", "D", "B")},
		{"same top, different params", state.RouteStack{{Name: "A", Params: state.Params{"id": 1}}}, state.RouteStack{{Name: "A", Params: state.Params{"id": 2}}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			effect, err := Route(tc.prev, tc.curr, nil)
			require.NoError(t, err)
			assert.Nil(t, effect)
		})
	}
}

func TestRoute_Shapes(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr state.RouteStack
		want       state.Effect
	}{
		{"1 to 1 differing top sets root", stack("A"), stack("B"), state.SetRoot(state.Route{Name: "B"})},
		{"3 to 1 sets root", stack("A", "B", "C"), stack("D"), state.SetRoot(state.Route{Name: "D"})},
		{"2 to 1 back to root pops", stack("A", "B"), stack("A"), state.Pop(true)},
		{"2 to 1 new root sets root", stack("A", "B"), stack("C"), state.SetRoot(state.Route{Name: "C"})},
		{"3 to 1 same bottom sets root", stack("A", "B", "C"), stack("A"), state.SetRoot(state.Route{Name: "A"})},
		{"3 to 2 pops", stack("A", "B", "C"), stack("A", "B"), state.Pop(true)},
		{"1 to 2 pushes", stack("A"), stack("A", "B"), state.Push(state.Route{Name: "B"})},
		{"same length differing top pushes", stack("A", "B"), stack("A", "C"), state.Push(state.Route{Name: "C"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effect, err := Route(tt.prev, tt.curr, nil)
			require.NoError(t, err)
			require.NotNil(t, effect)
			assert.Equal(t, tt.want, *effect)
		})
	}
}

func TestRoute_SideRoutePopIsNotAnimated(t *testing.T) {
	for _, side := range []string{"profile", "support", "transactions"} {
		t.Run(side, func(t *testing.T) {
			effect, err := Route(stack("A", "B", side), stack("A", "B"), nil)
			require.NoError(t, err)
			require.NotNil(t, effect)
			assert.Equal(t, state.EffectPop, effect.Kind)
			assert.False(t, effect.Animated)
		})
	}

	effect, err := Route(stack("A", "B", "settings"), stack("A", "B"), nil)
	require.NoError(t, err)
	assert.True(t, effect.Animated, "non-side routes animate")
}

func TestRoute_CustomSideRoutes(t *testing.T) {
	sides := NewRouteSet("help")

	effect, err := Route(stack("A", "B", "help"), stack("A", "B"), sides)
	require.NoError(t, err)
	assert.False(t, effect.Animated)

	effect, err = Route(stack("A", "B", "profile"), stack("A", "B"), sides)
	require.NoError(t, err)
	assert.True(t, effect.Animated, "profile is only a side route in the default set")
}

func TestRoute_CarriesParams(t *testing.T) {
	curr := state.RouteStack{{Name: "A"}, {Name: "dish", Params: state.Params{"id": 12}}}
	effect, err := Route(stack("A"), curr, nil)
	require.NoError(t, err)
	require.NotNil(t, effect.Route)
	assert.Equal(t, 12, effect.Route.Params["id"])
}

func TestRoute_EmptyStackFailsFast(t *testing.T) {
	_, err := Route(state.RouteStack{}, stack("A"), nil)
	require.Error(t, err)
	assert.True(t, IsPreconditionViolation(err))
	assert.ErrorIs(t, err, state.ErrEmptyStack)
	assert.Contains(t, err.Error(), "previous")

	_, err = Route(stack("A"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current")
}

func TestRouteSet_Names(t *testing.T) {
	assert.Equal(t, []string{"profile", "support", "transactions"}, DefaultSideRoutes().Names())
}
