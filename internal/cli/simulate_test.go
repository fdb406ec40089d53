package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simulateToDB runs saveScript through simulate with a journal and returns
// the database path and the session token.
func simulateToDB(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	script := writeFile(t, dir, "s.yaml", saveScript)
	db := filepath.Join(dir, "journal.db")

	out, _, err := execute(NewSimulateCommand(&RootOptions{Format: "json"}), script, "--db", db, "--settle", "0s")
	require.NoError(t, err)

	var resp struct {
		Data SimulateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.Session)
	return db, resp.Data.Session
}

func TestSimulate_Text(t *testing.T) {
	script := writeFile(t, t.TempDir(), "s.yaml", saveScript)

	out, _, err := execute(NewSimulateCommand(&RootOptions{Format: "text"}), script, "--settle", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "nav   push B\n")
	assert.Contains(t, out, `toast present "Zapisano" (bottom, 4s)`)
	assert.Contains(t, out, "nav   pop (animate=true)\n")
	assert.Contains(t, out, "toast dismiss\n")
	assert.Contains(t, out, "4 snapshots, 4 effects executed, 0 failed, 0 skipped")
	assert.NotContains(t, out, "Journal:")
}

func TestSimulate_JSONKeepsConsoleOnStderr(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "s.yaml", saveScript)
	db := filepath.Join(dir, "j.db")

	out, errOut, err := execute(NewSimulateCommand(&RootOptions{Format: "json"}), script, "--db", db, "--settle", "0s")
	require.NoError(t, err)
	assert.Contains(t, errOut, "nav   push B")

	var resp struct {
		Status string         `json:"status"`
		Data   SimulateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(4), resp.Data.Executed)
	assert.Equal(t, 4, resp.Data.Snapshots)
	assert.Equal(t, db, resp.Data.Journal)
}

func TestSimulate_ServesMetrics(t *testing.T) {
	script := writeFile(t, t.TempDir(), "s.yaml", saveScript)
	_, _, err := execute(NewSimulateCommand(&RootOptions{Format: "text"}), script, "--settle", "0s", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
}

func TestSimulate_BadScript(t *testing.T) {
	script := writeFile(t, t.TempDir(), "s.yaml", "snapshots:\n  - routes: []\n")
	_, _, err := execute(NewSimulateCommand(&RootOptions{Format: "text"}), script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_Deterministic(t *testing.T) {
	db, session := simulateToDB(t)

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 session(s)")
	assert.Contains(t, out, "Session: "+session)
	assert.Contains(t, out, "Snapshots: 4, planned effects: 4")
	assert.Contains(t, out, "✓ All sessions verified deterministic")
}

func TestReplay_JSON(t *testing.T) {
	db, session := simulateToDB(t)

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", db, "--session", session)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Sessions, 1)
	assert.Equal(t, session, resp.Data.Sessions[0].Session)
}

func TestReplay_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found in database.")
}

func TestReplay_UnknownSession(t *testing.T) {
	db, _ := simulateToDB(t)
	_, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", db, "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_LatestSession(t *testing.T) {
	db, session := simulateToDB(t)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Trace: "+session)
	assert.Contains(t, out, "snapshot  routes=[A]\n")
	assert.Contains(t, out, `snapshot  routes=[A B] toast="SAVED"`)
	assert.Contains(t, out, "effect    pair 1 route  push(B)")
	assert.Contains(t, out, "4 snapshots, 4 effects: 4 ok, 0 failed, 0 skipped, 0 pending")
}

func TestTrace_CategoryFilter(t *testing.T) {
	db, session := simulateToDB(t)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), "--db", db, "--session", session, "--category", "toast")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 4, resp.Data.Stats.Snapshots)
	assert.Equal(t, 2, resp.Data.Stats.Effects)
	assert.Equal(t, 2, resp.Data.Stats.OK)
	for _, ev := range resp.Data.Timeline {
		if ev.Type != "snapshot" {
			assert.Equal(t, "toast", ev.Category)
		}
	}
}

func TestTrace_BadCategory(t *testing.T) {
	db, _ := simulateToDB(t)
	_, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", db, "--category", "sidebar")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_UnknownSession(t *testing.T) {
	db, _ := simulateToDB(t)
	_, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", db, "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
