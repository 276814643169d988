// Package commands implements the starshell subcommands and entry points.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.starlark.net/starlark"
	"golang.org/x/term"

	"github.com/leapstack-labs/starshell/internal/classify"
	"github.com/leapstack-labs/starshell/internal/cli/config"
	"github.com/leapstack-labs/starshell/internal/compiler"
	"github.com/leapstack-labs/starshell/internal/engine"
	"github.com/leapstack-labs/starshell/internal/repl"
)

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newSession(cmd *cobra.Command, cfg *config.Config, argv []string, logger *slog.Logger) (*engine.Session, *compiler.Compiler) {
	comp := compiler.New(cfg.Dialect.FileOptions())
	sess := engine.NewSession(engine.Options{
		Stdout:   cmd.OutOrStdout(),
		PS1:      cfg.PS1,
		PS2:      cfg.PS2,
		Argv:     argv,
		Logger:   logger,
		Compiler: comp,
	})
	return sess, comp
}

// RunSource executes src as a script named name. Errors are reported on
// stderr and turned into exit status 1; exit() requests pass through.
func RunSource(cmd *cobra.Command, name, src string, argv []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	sess, _ := newSession(cmd, cfg, argv, logger)
	logger.Debug("running script", slog.String("name", name), slog.Int("bytes", len(src)))

	err := sess.ExecFile(ctx, name, src)
	if err == nil || engine.IsProcessTerminationSignal(err) {
		return err
	}
	engine.NewReporter(cmd.ErrOrStderr(), !cfg.NoColor).Report(err)
	return &engine.ExitError{Code: 1}
}

// RunREPL starts an interactive session on the terminal.
func RunREPL(cmd *cobra.Command, version string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx).With(slog.String("session", uuid.NewString()))

	sess, comp := newSession(cmd, cfg, []string{""}, logger)
	reporter := engine.NewReporter(cmd.ErrOrStderr(), !cfg.NoColor)

	if err := runStartup(ctx, sess, reporter, cfg.Startup, logger); err != nil {
		return err
	}

	editor, err := repl.NewReadline(repl.EditorOptions{
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
		HistoryLimit: cfg.HistoryLimit,
		Names:        sess.Names,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = editor.Close() }()

	if cfg.Banner {
		printBanner(cmd.OutOrStdout(), version, cfg.NoColor)
	}

	loop := repl.New(repl.Config{
		Editor:      editor,
		Classifier:  classify.New(comp),
		Executor:    interruptible{sess},
		Reporter:    reporter,
		HistoryPath: cfg.HistoryPath(),
		DotCommands: true,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
		Logger:      logger,
	})
	logger.Debug("starting repl", slog.String("history", cfg.HistoryPath()))
	return loop.Run(ctx)
}

// runStartup executes each startup file in the interactive session.
// Failures are reported and skipped; exit() ends the shell.
func runStartup(ctx context.Context, sess *engine.Session, reporter *engine.Reporter, paths []string, logger *slog.Logger) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			reporter.Report(fmt.Errorf("startup file: %w", err))
			continue
		}
		logger.Debug("running startup file", slog.String("path", path))
		if err := sess.ExecFile(ctx, path, string(src)); err != nil {
			if engine.IsProcessTerminationSignal(err) {
				return err
			}
			reporter.Report(err)
		}
	}
	return nil
}

// interruptible turns SIGINT during execution into a KeyboardInterrupt
// instead of killing the process. Reading lines is handled by the editor.
type interruptible struct {
	*engine.Session
}

func (e interruptible) Run(ctx context.Context, unit *compiler.Unit) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	go func() {
		select {
		case <-sig:
			cancel(engine.ErrKeyboardInterrupt)
		case <-ctx.Done():
		}
	}()

	return e.Session.Run(ctx, unit)
}

func printBanner(w io.Writer, version string, noColor bool) {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hint := r.NewStyle().Faint(true)

	_, _ = fmt.Fprintf(w, "%s %s\n", title.Render("starshell "+version), hint.Render(fmt.Sprintf("(Starlark, bytecode v%d)", starlark.CompilerVersion)))
	_, _ = fmt.Fprintln(w, hint.Render("Type .help for commands, exit() or Ctrl-D to quit"))
}
