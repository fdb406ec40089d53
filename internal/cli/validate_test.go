package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidScripts(t *testing.T) {
	dir := t.TempDir()
	y := writeFile(t, dir, "a.yaml", saveScript)
	c := writeFile(t, dir, "b.cue", `snapshots: [{routes: ["A"]}, {routes: ["A", {name: "B", params: id: 1}]}]`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), y, c)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+y+" (4 snapshots)")
	assert.Contains(t, out, "✓ "+c+" (2 snapshots)")
}

func TestValidate_InvalidScript(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", saveScript)
	bad := writeFile(t, dir, "bad.yaml", "snapshots:\n  - routes: []\n")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, "snapshots[0].routes")
}

func TestValidate_JSON(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.cue", `snapshots: [{routes: ["A"], toast: {is_shown: "yes"}}]`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), bad)
	require.Error(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateResult `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalidScript, resp.Error.Code)
	require.Len(t, resp.Data.Scripts, 1)
	assert.False(t, resp.Data.Scripts[0].Valid)
	assert.NotEmpty(t, resp.Data.Scripts[0].Error)
}

func TestValidate_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.json", "{}")
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, out, "unsupported script extension")
}
