package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/starshell/internal/cli/config"
	"github.com/leapstack-labs/starshell/internal/compiler"
	"github.com/leapstack-labs/starshell/internal/engine"
	"github.com/leapstack-labs/starshell/internal/testutil"
)

// newTestCommand returns a command whose context carries cfg and whose
// output streams are captured.
func newTestCommand(t *testing.T, cfg *config.Config) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	ctx := config.WithLogger(context.Background(), testutil.NewTestLogger(t))
	cmd.SetContext(config.WithConfig(ctx, cfg))
	return cmd, &stdout, &stderr
}

func noColor() *config.Config {
	cfg := config.Default()
	cfg.NoColor = true
	return cfg
}

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run FILE [ARGS...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.Error(t, cmd.Args(cmd, nil), "run requires a file")
}

func TestRunCommand_PassesArgv(t *testing.T) {
	script := testutil.WriteScript(t, "argv.star", "print(sys.argv)\n")

	parent, stdout, _ := newTestCommand(t, noColor())
	run := NewRunCommand()
	parent.AddCommand(run)
	parent.SetArgs([]string{"run", script, "--flag", "x"})

	require.NoError(t, parent.ExecuteContext(parent.Context()))
	assert.Equal(t, `["`+script+`", "--flag", "x"]`+"\n", stdout.String())
}

func TestRunCommand_MissingFile(t *testing.T) {
	parent, _, _ := newTestCommand(t, noColor())
	parent.AddCommand(NewRunCommand())
	parent.SetArgs([]string{"run", filepath.Join(t.TempDir(), "missing.star")})

	err := parent.ExecuteContext(parent.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read script")
}

func TestRunSource(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantOut    string
		wantStderr string
		wantCode   int
		wantErr    bool
	}{
		{
			name:    "prints",
			src:     "x = 2\nprint(x * 21)\n",
			wantOut: "42\n",
		},
		{
			name:    "bare expressions do not echo",
			src:     "1 + 1\n",
			wantOut: "",
		},
		{
			name:     "exit status",
			src:      "print('bye')\nexit(4)\nprint('unreachable')\n",
			wantOut:  "bye\n",
			wantCode: 4,
			wantErr:  true,
		},
		{
			name:       "syntax error",
			src:        "x = (\n",
			wantStderr: "SyntaxError",
			wantCode:   1,
			wantErr:    true,
		},
		{
			name:       "runtime error",
			src:        "fail('boom')\n",
			wantStderr: "boom",
			wantCode:   1,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, stdout, stderr := newTestCommand(t, noColor())

			err := RunSource(cmd, "script.star", tt.src, []string{"script.star"})
			assert.Equal(t, tt.wantOut, stdout.String())
			assert.Contains(t, stderr.String(), tt.wantStderr)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var exit *engine.ExitError
			require.True(t, errors.As(err, &exit), "want *engine.ExitError, got %T", err)
			assert.Equal(t, tt.wantCode, exit.Code)
		})
	}
}

func TestRunSource_DialectFromConfig(t *testing.T) {
	cfg := noColor()
	cfg.Dialect.While = false
	cmd, _, stderr := newTestCommand(t, cfg)

	err := RunSource(cmd, "loop.star", "while False:\n    pass\n", nil)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "while")
}

func TestRunStartup(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.star")
	bad := filepath.Join(dir, "bad.star")
	require.NoError(t, os.WriteFile(good, []byte("greeting = 'hi'\n"), 0600))
	require.NoError(t, os.WriteFile(bad, []byte("undefined_name\n"), 0600))

	var stdout, stderr bytes.Buffer
	sess := engine.NewSession(engine.Options{Stdout: &stdout, Compiler: compiler.New(nil)})
	reporter := engine.NewReporter(&stderr, false)

	err := runStartup(context.Background(), sess, reporter, []string{bad, filepath.Join(dir, "missing.star"), good}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Contains(t, sess.Globals(), "greeting", "later files still run after a failure")
	assert.Contains(t, stderr.String(), "undefined_name")
	assert.Contains(t, stderr.String(), "startup file")
}

func TestRunStartup_ExitStops(t *testing.T) {
	dir := t.TempDir()
	quit := filepath.Join(dir, "quit.star")
	after := filepath.Join(dir, "after.star")
	require.NoError(t, os.WriteFile(quit, []byte("exit(2)\n"), 0600))
	require.NoError(t, os.WriteFile(after, []byte("ran = True\n"), 0600))

	sess := engine.NewSession(engine.Options{Stdout: new(bytes.Buffer)})
	reporter := engine.NewReporter(new(bytes.Buffer), false)

	err := runStartup(context.Background(), sess, reporter, []string{quit, after}, testutil.NewTestLogger(t))
	assert.True(t, engine.IsProcessTerminationSignal(err))
	assert.NotContains(t, sess.Globals(), "ran")
}

func TestInterruptible_RunsUnit(t *testing.T) {
	var stdout bytes.Buffer
	comp := compiler.New(nil)
	sess := engine.NewSession(engine.Options{Stdout: &stdout, Compiler: comp})

	unit, err := comp.Compile("40 + 2\n", compiler.ModeInteractive, "<stdin>")
	require.NoError(t, err)

	exec := interruptible{sess}
	require.NoError(t, exec.Run(context.Background(), unit))
	assert.Equal(t, "42\n", stdout.String())
	assert.Equal(t, ">>> ", exec.Prompt("ps1"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, "1.2.3", true)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "starshell 1.2.3 (Starlark"), out)
	assert.Contains(t, out, ".help")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(strings.NewReader("")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.False(t, IsTerminal(f))
}
