// Package engine executes compiled units against a long-lived interpreter session.
//
// A Session owns one Starlark thread and one mutable set of globals that is
// reused for every unit run during the session, so bindings made on one
// prompt are visible on the next.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/starshell/internal/compiler"
)

// Default prompt strings.
const (
	DefaultPS1 = ">>> "
	DefaultPS2 = "... "
)

// Options configures a Session.
type Options struct {
	Stdout io.Writer
	PS1    string
	PS2    string
	Argv   []string
	Logger *slog.Logger
	// Compiler parses scripts run with ExecFile. Nil selects the default dialect.
	Compiler *compiler.Compiler
}

// Session is an interpreter session: a thread plus the globals it mutates.
type Session struct {
	thread  *starlark.Thread
	globals starlark.StringDict
	sys     *Sys
	out     io.Writer
	logger  *slog.Logger
	comp    *compiler.Compiler
}

// NewSession creates a session with the shell's predeclared globals.
func NewSession(opts Options) *Session {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ps1, ps2 := opts.PS1, opts.PS2
	if ps1 == "" {
		ps1 = DefaultPS1
	}
	if ps2 == "" {
		ps2 = DefaultPS2
	}

	s := &Session{
		sys:    NewSys(ps1, ps2, opts.Argv),
		out:    out,
		logger: logger,
		comp:   opts.Compiler,
	}
	if s.comp == nil {
		s.comp = compiler.New(nil)
	}
	s.thread = &starlark.Thread{
		Name: "starshell",
		Print: func(_ *starlark.Thread, msg string) {
			_, _ = fmt.Fprintln(s.out, msg)
		},
	}
	s.globals = starlark.StringDict{
		"sys":    s.sys,
		"exit":   newExitBuiltin("exit"),
		"quit":   newExitBuiltin("quit"),
		"json":   json.Module,
		"math":   math.Module,
		"time":   time.Module,
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"module": starlark.NewBuiltin("module", starlarkstruct.MakeModule),
	}
	if env, err := ToStarlark(environ()); err == nil {
		_ = s.sys.SetField("environ", env)
	}
	return s
}

// Run executes unit in the session.
//
// An interactive unit consisting of a single expression statement is
// evaluated and its value printed unless it is None.
func (s *Session) Run(ctx context.Context, unit *compiler.Unit) error {
	if unit == nil || unit.File == nil || len(unit.File.Stmts) == 0 {
		return nil
	}
	s.thread.SetLocal("context", ctx)

	// Cancelling ctx aborts the computation; the thread stays usable afterwards.
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		s.thread.Cancel("interrupted")
		close(fired)
	})
	defer func() {
		if !stop() {
			<-fired
			s.thread.Uncancel()
		}
	}()

	s.logger.Debug("executing unit",
		slog.String("name", unit.Name),
		slog.Int("statements", len(unit.File.Stmts)))

	err := s.exec(unit)
	if err != nil && errors.Is(context.Cause(ctx), ErrKeyboardInterrupt) {
		return ErrKeyboardInterrupt
	}
	return err
}

func (s *Session) exec(unit *compiler.Unit) error {
	if unit.Mode == compiler.ModeInteractive {
		if expr := soleExpr(unit.File); expr != nil {
			v, err := starlark.EvalExprOptions(unit.File.Options, s.thread, expr, s.globals)
			if err != nil {
				return err
			}
			if v != starlark.None {
				_, _ = fmt.Fprintln(s.out, v.String())
			}
			return nil
		}
	}
	return starlark.ExecREPLChunk(unit.File, s.thread, s.globals)
}

// ExecFile compiles src as a whole script named name and runs it.
func (s *Session) ExecFile(ctx context.Context, name, src string) error {
	unit, err := s.comp.Compile(src, compiler.ModeFile, name)
	if err != nil {
		return err
	}
	return s.Run(ctx, unit)
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}

// Prompt returns sys.<name> rendered as a string, or "" when it is missing.
func (s *Session) Prompt(name string) string {
	v, err := s.sys.Attr(name)
	if err != nil || v == nil {
		return ""
	}
	if str, ok := starlark.AsString(v); ok {
		return str
	}
	return v.String()
}

// Globals returns the session's global bindings. The map is live.
func (s *Session) Globals() starlark.StringDict {
	return s.globals
}

// Names returns the sorted names of all globals and universal built-ins.
func (s *Session) Names() []string {
	seen := make(map[string]bool, len(s.globals)+len(starlark.Universe))
	names := make([]string, 0, len(s.globals)+len(starlark.Universe))
	for _, dict := range []starlark.StringDict{s.globals, starlark.Universe} {
		for name := range dict {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
