package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uisync/internal/schema"
	"github.com/roach88/uisync/internal/state"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 5)

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, sc)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.True(t, result.Deterministic)
		})
	}
}

func TestRun_SessionToken(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/overlays_independent.yaml")
	require.NoError(t, err)
	result, err := Run(sc)
	require.NoError(t, err)
	assert.Equal(t, "overlays-session", result.Session)

	sc.Session = ""
	result, err = Run(sc)
	require.NoError(t, err)
	assert.Equal(t, "test-session", result.Session)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	sc := &Scenario{
		Name:        "mismatch",
		Description: "wrong expectation",
		Snapshots:   []schema.Snapshot{routes("A"), routes("A", "B")},
		Expect:      map[string][]string{"route": {"pop animate=true"}},
	}
	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expect route")
}

func TestRun_UnlistedCategoryMustBeQuiet(t *testing.T) {
	sc := &Scenario{
		Name:        "quiet",
		Description: "menu changes but is not expected",
		Snapshots:   []schema.Snapshot{routes("welcome"), routes("home")},
		Expect:      map[string][]string{"route": {"set_root home"}},
	}
	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expect menu")
}

func TestRun_MenuDisabled(t *testing.T) {
	menu := false
	sc := &Scenario{
		Name:        "no_menu",
		Description: "menu lane switched off",
		Options:     &schema.Options{Menu: &menu},
		Snapshots:   []schema.Snapshot{routes("welcome"), routes("home")},
		Expect:      map[string][]string{"route": {"set_root home"}},
	}
	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Calls[state.CategoryMenu])
}

func TestRun_SideRouteOverride(t *testing.T) {
	sc := &Scenario{
		Name:        "side_cart",
		Description: "cart closes without animation",
		Options:     &schema.Options{SideRoutes: []string{"cart"}},
		Snapshots:   []schema.Snapshot{routes("home", "cart"), routes("home")},
		Expect:      map[string][]string{"route": {"pop animate=false"}},
	}
	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "name: x\ndescription: y\nsnapshot: []\n", "snapshot"},
		{"no name", "description: y\nsnapshots: [{routes: [A]}]\n", "name is required"},
		{"no description", "name: x\nsnapshots: [{routes: [A]}]\n", "description is required"},
		{"no snapshots", "name: x\ndescription: y\n", "snapshots list is required"},
		{"bad expect category", "name: x\ndescription: y\nsnapshots: [{routes: [A]}]\nexpect: {drawer: []}\n", "drawer"},
		{"bad failure op", "name: x\ndescription: y\nsnapshots: [{routes: [A]}]\nfailures: [{category: toast, op: explode, error: e}]\n", "explode"},
		{"failure without error", "name: x\ndescription: y\nsnapshots: [{routes: [A]}]\nfailures: [{category: toast, op: dismiss}]\n", "error is required"},
		{"unknown assertion", "name: x\ndescription: y\nsnapshots: [{routes: [A]}]\nassertions: [{type: vibes}]\n", "vibes"},
		{"order needs two", "name: x\ndescription: y\nsnapshots: [{routes: [A]}]\nassertions: [{type: calls_order, category: route, calls: [push B]}]\n", "at least 2"},
		{"bad status", "name: x\ndescription: y\nsnapshots: [{routes: [A]}]\nassertions: [{type: outcome_count, status: meh}]\n", "meh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\n"), 0o644))
	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func routes(names ...string) schema.Snapshot {
	s := schema.Snapshot{}
	for _, n := range names {
		s.Routes = append(s.Routes, schema.RouteRef{Name: n})
	}
	return s
}
