package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/floatctl/cmd/floatctl/handlers"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "floatctl", cmd.Use)
	assert.Equal(t, "Rebind floating addresses and control instance power", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{"stop", "start", "rebind", "ip", "status", "release", "version"}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), len(expectedSubcommands))
}

func TestRoot_PersistentFlags(t *testing.T) {
	cmd := Root()

	tests := []struct {
		name      string
		shorthand string
	}{
		{"verbose", "v"},
		{"quiet", "q"},
		{"config", "c"},
		{"secrets", "s"},
		{"provider", ""},
		{"target", ""},
		{"metrics-file", ""},
	}
	for _, tt := range tests {
		flag := cmd.PersistentFlags().Lookup(tt.name)
		require.NotNil(t, flag, "flag %s should exist", tt.name)
		assert.Equal(t, tt.shorthand, flag.Shorthand, "flag %s", tt.name)
	}

	assert.Equal(t, "config.json", filepath.Base(cmd.PersistentFlags().Lookup("config").DefValue))
	assert.Equal(t, "secrets.json", filepath.Base(cmd.PersistentFlags().Lookup("secrets").DefValue))
}

func TestSubcommandFlags(t *testing.T) {
	cmd := Root()

	stop, _, err := cmd.Find([]string{"stop"})
	require.NoError(t, err)
	assert.NotNil(t, stop.Flags().Lookup("keep-charging"))
	assert.NotNil(t, stop.Flags().Lookup("force"))

	rebind, _, err := cmd.Find([]string{"rebind"})
	require.NoError(t, err)
	assert.NotNil(t, rebind.Flags().Lookup("keep-old"))
	assert.NotNil(t, rebind.Flags().Lookup("no-allocate"))
	assert.Contains(t, rebind.Long, "--no-allocate")
}

func TestRejectsArguments(t *testing.T) {
	cmd := Root()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"status", "extra"})

	require.Error(t, cmd.Execute())
}

// execute runs the CLI against the in-memory demo provider.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, v := range []string{"FLOATCTL_PROVIDER", "FLOATCTL_TARGET", "FLOATCTL_POLL_INTERVAL", "FLOATCTL_POLL_MAX_ATTEMPTS", "FLOATCTL_POLL_DEADLINE"} {
		t.Setenv(v, "")
	}

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	data := `{"Target": "demo-1", "provider": "memory", "poll": {"interval": "1ms"}, "power": {"stopInterval": "1ms", "startInterval": "1ms"}}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0600))

	var out, errOut bytes.Buffer
	cmd := Root()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"-c", cfgPath, "-s", filepath.Join(dir, "secrets.json")}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestExecute_IP(t *testing.T) {
	out, _, err := execute(t, "ip")
	require.NoError(t, err)
	assert.Equal(t, "The ip address of demo-1 (demo) is:\n192.0.2.10\n", out)
}

func TestExecute_Rebind(t *testing.T) {
	out, logs, err := execute(t, "rebind")
	require.NoError(t, err)
	assert.Contains(t, out, "bound eip-demo-0002 (192.0.2.11) to demo-1 (demo)")
	assert.Contains(t, out, "released eip-demo-0001")
	assert.Contains(t, logs, "Bound address eip-demo-0002")
}

func TestExecute_StopQuiet(t *testing.T) {
	out, logs, err := execute(t, "-q", "stop", "--force")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, logs)
}

func TestExecute_TargetOverrideNotFound(t *testing.T) {
	_, _, err := execute(t, "--target", "i-nope", "status")
	require.Error(t, err)
	assert.Equal(t, handlers.ExitTargetNotFound, handlers.ExitCode(err))
}
