package engine

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/starshell/internal/compiler"
)

// Reporter writes errors to the user in a traceback-like layout.
type Reporter struct {
	w        io.Writer
	kind     lipgloss.Style
	location lipgloss.Style
	caret    lipgloss.Style
}

// NewReporter creates a reporter writing to w. When color is false all
// styling is disabled; otherwise it follows what the terminal supports.
func NewReporter(w io.Writer, color bool) *Reporter {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Reporter{
		w:        w,
		kind:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		location: r.NewStyle().Faint(true),
		caret:    r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Report prints err. A nil err prints nothing.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}

	var (
		diag     *compiler.Diagnostic
		evalErr  *starlark.EvalError
		resolved resolve.ErrorList
		exit     *ExitError
	)
	switch {
	case errors.Is(err, ErrKeyboardInterrupt):
		r.println(r.kind.Render("KeyboardInterrupt"))
	case errors.As(err, &diag):
		r.reportDiagnostic(diag)
	case errors.As(err, &exit):
		if exit.Message != "" {
			r.println(exit.Message)
		}
	case errors.As(err, &evalErr):
		r.println(r.location.Render(strings.TrimRight(evalErr.Backtrace(), "\n")))
	case errors.As(err, &resolved):
		for _, e := range resolved {
			r.println(r.location.Render(e.Pos.String()+":") + " " + r.kind.Render("NameError") + ": " + e.Msg)
		}
	default:
		r.println(r.kind.Render("Error") + ": " + err.Error())
	}
}

func (r *Reporter) reportDiagnostic(d *compiler.Diagnostic) {
	name := d.Filename
	if name == "" {
		name = "<unknown>"
	}
	r.println(r.location.Render(fmt.Sprintf("  File %q, line %d", name, d.Line)))

	if line := d.SourceLine(); line != "" {
		trimmed := strings.TrimLeft(line, " \t")
		indent := len([]rune(line)) - len([]rune(trimmed))
		r.println("    " + trimmed)
		if col := d.Col - 1 - indent; col >= 0 {
			r.println("    " + strings.Repeat(" ", col) + r.caret.Render("^"))
		}
	}
	r.println(r.kind.Render(ErrorLabel(d)) + ": " + d.Msg)
}

// ErrorLabel names the kind of syntax error d describes.
func ErrorLabel(d *compiler.Diagnostic) string {
	switch {
	case d.Category == compiler.CategoryIndentation,
		strings.HasPrefix(d.Msg, compiler.IndentedBlockMsg):
		return "IndentationError"
	case d.Category == compiler.CategoryFatal:
		return "Error"
	}
	return "SyntaxError"
}

func (r *Reporter) println(s string) {
	_, _ = fmt.Fprintln(r.w, s)
}
