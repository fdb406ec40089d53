package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "uisync", cmd.Use)
	assert.Contains(t, cmd.Long, "snapshots")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"simulate", "plan", "validate", "replay", "trace", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRequiredDBFlags(t *testing.T) {
	for _, name := range []string{"replay", "trace"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(NewRootCommand(), name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag")
			assert.Contains(t, err.Error(), "db")
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "s.yaml", saveScript)
	_, _, err := execute(NewRootCommand(), "validate", script, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "s.yaml", saveScript)

	bad := writeFile(t, dir, "bad.toml", "[toast]\nposition = \"sideways\"\n")
	_, _, err := execute(NewRootCommand(), "validate", script, "--config", bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "toast.position")

	good := writeFile(t, dir, "good.toml", "[routes]\nside = [\"B\"]\n")
	out, _, err := execute(NewRootCommand(), "plan", script, "--config", good)
	require.NoError(t, err)
	assert.Contains(t, out, "pop(animated=false)", "B is a side route in this config")
}

func TestVerboseEnablesDebugLogs(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "s.yaml", saveScript)
	_, stderr, err := execute(NewRootCommand(), "simulate", script, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
}

func TestSimulate_ShellEnvironmentDoesNotLeakIntoConfig(t *testing.T) {
	t.Setenv("PATH", "/usr/local/bin:/usr/bin:/bin")
	t.Setenv("LANGUAGE", "en_US:en")
	t.Setenv("LEVEL", "debug")
	script := writeFile(t, t.TempDir(), "s.yaml", saveScript)

	out, _, err := execute(NewRootCommand(), "simulate", script, "--settle", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, `toast present "Zapisano"`, "language stays at the default")
	assert.NotContains(t, out, "Journal:", "no journal unless configured")
}
