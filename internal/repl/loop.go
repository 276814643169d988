// Package repl drives the interactive read-eval loop.
//
// The loop owns the input buffer and the continuation flags. After every line
// it asks the classifier what to do with the buffer, runs complete units,
// reports failures, and picks the next prompt. Nothing here inspects the
// source text itself.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/starshell/internal/classify"
	"github.com/leapstack-labs/starshell/internal/compiler"
	"github.com/leapstack-labs/starshell/internal/engine"
	"github.com/leapstack-labs/starshell/internal/history"
)

// Classifier reduces the buffer to a verdict.
type Classifier interface {
	Classify(source string, hadEmptyLine, continuingBlock bool) classify.Verdict
}

// Executor runs compiled units and owns the prompt strings.
type Executor interface {
	Run(ctx context.Context, unit *compiler.Unit) error
	Prompt(name string) string
}

// Reporter prints errors for the user.
type Reporter interface {
	Report(err error)
}

// State is the continuation state shown by the prompt.
type State int

const (
	// Fresh means the buffer is empty and nothing is pending.
	Fresh State = iota
	// LineContinuing means one more line is expected. It lasts a single iteration.
	LineContinuing
	// BlockContinuing means lines are read until a blank one.
	BlockContinuing
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case LineContinuing:
		return "line-continuing"
	case BlockContinuing:
		return "block-continuing"
	}
	return "unknown"
}

// Config wires a Loop to its collaborators.
type Config struct {
	Editor     LineEditor
	Classifier Classifier
	Executor   Executor
	Reporter   Reporter

	// HistoryPath is loaded once at start and written on every exit path.
	HistoryPath string

	// IsTermination reports whether an error must end the process.
	// Defaults to engine.IsProcessTerminationSignal.
	IsTermination func(error) bool

	// DotCommands enables .help, .quit and friends at the primary prompt.
	DotCommands bool

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Loop is one interactive session. It is not safe for concurrent use.
type Loop struct {
	cfg    Config
	logger *slog.Logger

	buffer          strings.Builder
	continuingBlock bool
	continuingLine  bool
}

// errQuit ends the loop like end of input.
var errQuit = errors.New("quit")

// New creates a loop in the Fresh state.
func New(cfg Config) *Loop {
	if cfg.IsTermination == nil {
		cfg.IsTermination = engine.IsProcessTerminationSignal
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{cfg: cfg, logger: logger}
}

// State returns the current continuation state.
func (l *Loop) State() State {
	switch {
	case l.continuingBlock:
		return BlockContinuing
	case l.continuingLine:
		return LineContinuing
	}
	return Fresh
}

// Buffer returns the text accumulated since the last reset.
func (l *Loop) Buffer() string {
	return l.buffer.String()
}

// Run reads and evaluates lines until input ends, a termination signal is
// raised, or ctx is cancelled. It returns nil on end of input and on editor
// failures (which are printed to Stderr), and the termination error otherwise.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.cfg.Editor.LoadHistory(l.cfg.HistoryPath); err != nil {
		if history.IsNotExist(err) {
			l.logger.Debug("no previous history", slog.String("path", l.cfg.HistoryPath))
		} else {
			l.logger.Warn("failed to load history", slog.String("path", l.cfg.HistoryPath), slog.Any("error", err))
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			l.saveHistory()
			return err
		}

		prompt := l.prompt()
		l.continuingLine = false

		res := l.cfg.Editor.ReadLine(prompt)

		var err error
		switch res.Kind {
		case ReadText:
			err = l.handleLine(ctx, res.Text)
		case ReadInterrupt:
			l.reset()
			err = engine.ErrKeyboardInterrupt
		case ReadEOF:
			l.saveHistory()
			return nil
		case ReadIOError:
			_, _ = fmt.Fprintf(l.cfg.Stderr, "IO error: %v\n", res.Err)
			l.logger.Error("line editor I/O failed", slog.Any("error", res.Err))
			l.saveHistory()
			return nil
		default:
			_, _ = fmt.Fprintf(l.cfg.Stderr, "Readline error: %v\n", res.Err)
			l.logger.Error("line editor failed", slog.Any("error", res.Err))
			l.saveHistory()
			return nil
		}

		if err == nil {
			continue
		}
		if errors.Is(err, errQuit) {
			l.saveHistory()
			return nil
		}
		if l.cfg.IsTermination(err) {
			l.saveHistory()
			return err
		}
		l.cfg.Reporter.Report(err)
	}
}

func (l *Loop) prompt() string {
	if l.continuingBlock || l.continuingLine {
		return l.cfg.Executor.Prompt("ps2")
	}
	return l.cfg.Executor.Prompt("ps1")
}

func (l *Loop) handleLine(ctx context.Context, text string) error {
	if err := l.cfg.Editor.AddHistoryEntry(text); err != nil {
		l.logger.Warn("failed to record history entry", slog.Any("error", err))
	}

	if l.cfg.DotCommands && l.State() == Fresh && l.buffer.Len() == 0 {
		if cmd, ok := parseDotCommand(text); ok {
			return l.runDotCommand(cmd)
		}
	}

	empty := text == ""
	l.buffer.WriteString(text)
	l.buffer.WriteString("\n")

	wasBlock := l.continuingBlock
	verdict := l.cfg.Classifier.Classify(l.buffer.String(), empty, wasBlock)

	l.logger.Debug("classified input",
		slog.String("verdict", verdict.Kind.String()),
		slog.Bool("empty_line", empty),
		slog.Bool("continuing_block", wasBlock))

	switch verdict.Kind {
	case classify.Complete:
		var err error
		if verdict.Unit != nil {
			err = l.cfg.Executor.Run(ctx, verdict.Unit)
		}
		if !wasBlock || empty {
			l.reset()
		}
		return err

	case classify.ContinueLine:
		l.continuingLine = true

	case classify.ContinueBlock:
		l.continuingBlock = true

	case classify.Failed:
		l.reset()
		if verdict.Diagnostic == nil {
			return errors.New("invalid input")
		}
		return verdict.Diagnostic
	}
	return nil
}

func (l *Loop) reset() {
	l.continuingBlock = false
	l.buffer.Reset()
}

func (l *Loop) saveHistory() {
	if err := l.cfg.Editor.SaveHistory(l.cfg.HistoryPath); err != nil {
		l.logger.Warn("failed to save history", slog.String("path", l.cfg.HistoryPath), slog.Any("error", err))
	}
}
