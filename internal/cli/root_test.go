package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/starshell/internal/cli/config"
	"github.com/leapstack-labs/starshell/internal/engine"
	"github.com/leapstack-labs/starshell/internal/testutil"
)

// runCLI executes the root command with args and stdin, isolated from the
// developer's configuration.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := execute(cmd, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRoot_Command(t *testing.T) {
	stdout, _, err := runCLI(t, "", "-c", "print(sys.argv)", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, `["-c", "a", "b"]`+"\n", stdout)
}

func TestRoot_PipedStdin(t *testing.T) {
	stdout, _, err := runCLI(t, "def f(n):\n    return n * 2\n\nprint(f(21))\n")
	require.NoError(t, err)
	assert.Equal(t, "42\n", stdout)
}

func TestRoot_FileArgument(t *testing.T) {
	script := testutil.WriteScript(t, "hello.star", "print('hello', sys.argv[1:])\n")

	stdout, _, err := runCLI(t, "", script, "-x", "--y")
	require.NoError(t, err)
	assert.Equal(t, `hello ["-x", "--y"]`+"\n", stdout)
}

func TestRoot_MissingFile(t *testing.T) {
	_, stderr, err := runCLI(t, "", filepath.Join(t.TempDir(), "nope.star"))
	require.Error(t, err)
	assert.Contains(t, stderr, "Error: failed to read script")
}

func TestRoot_ExitStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantCode   int
		wantStderr string
	}{
		{"explicit status", "exit(3)", 3, ""},
		{"message", "exit('goodbye')", 1, "goodbye\n"},
		{"error", "1 // 0", 1, "division by zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runCLI(t, "", "-c", tt.code)
			var exit *engine.ExitError
			require.True(t, errors.As(err, &exit), "want *engine.ExitError, got %v", err)
			assert.Equal(t, tt.wantCode, exit.Code)
			assert.Contains(t, stderr, tt.wantStderr)
			assert.NotContains(t, stderr, "Error: exit status")
		})
	}
}

func TestRoot_ConfigFileDialect(t *testing.T) {
	cfgPath := testutil.WriteScript(t, "custom.yaml", "dialect:\n  set: false\n")

	_, stderr, err := runCLI(t, "", "--config", cfgPath, "-c", "s = set([1])")
	require.Error(t, err)
	assert.Contains(t, stderr, "set")
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, stderr, err := runCLI(t, "", "--log-level", "loud", "-c", "pass")
	require.Error(t, err)
	assert.Contains(t, stderr, "Error: invalid log_level")
}

func TestRoot_Subcommands(t *testing.T) {
	stdout, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "starshell v"+Version)
	assert.Contains(t, stdout, "commit "+GitCommit+", built "+BuildDate)

	stdout, _, err = runCLI(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "starshell")

	script := testutil.WriteScript(t, "run.star", "print(len(sys.argv))\n")
	stdout, _, err = runCLI(t, "", "run", script, "one")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"config", "history-file", "no-color", "verbose", "log-level", "startup", "ps1", "ps2", "banner"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %q should exist", name)
	}
	assert.NotNil(t, cmd.Flags().Lookup("command"))
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}
