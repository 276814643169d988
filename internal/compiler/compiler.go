// Package compiler adapts the Starlark parser to the shell's diagnostic contract.
//
// The parser reports failures as a position and a message. Compile turns
// those into Diagnostic values carrying a Category and a byte Offset, which is
// all the completeness classifier is allowed to look at.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/syntax"
)

// Mode selects how much input a single compile accepts.
type Mode int

const (
	// ModeInteractive accepts one top-level statement, or one line of
	// semicolon-separated simple statements.
	ModeInteractive Mode = iota
	// ModeFile accepts any number of statements.
	ModeFile
)

// IndentedBlockMsg prefixes the message of a diagnostic reporting a block
// header with no body.
const IndentedBlockMsg = "Expected an indented block"

// MultipleStatementsMsg is reported when interactive input holds more than one statement.
const MultipleStatementsMsg = "multiple statements found while compiling a single statement"

// Unit is parsed source ready for execution.
type Unit struct {
	Name   string
	Source string
	Mode   Mode
	File   *syntax.File
}

// Compiler parses source text with a fixed set of dialect options.
type Compiler struct {
	opts *syntax.FileOptions
}

// DefaultFileOptions returns the dialect the shell uses unless configured otherwise.
func DefaultFileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
}

// New creates a compiler. A nil opts selects DefaultFileOptions.
func New(opts *syntax.FileOptions) *Compiler {
	if opts == nil {
		opts = DefaultFileOptions()
	}
	return &Compiler{opts: opts}
}

// Compile parses source as a unit named name.
// On failure the returned error is always a *Diagnostic.
func (c *Compiler) Compile(source string, mode Mode, name string) (*Unit, error) {
	src := NormalizeNewlines(source)

	f, err := c.opts.Parse(name, src, 0)
	if err != nil {
		return nil, diagnose(name, src, err)
	}

	if mode == ModeInteractive {
		if d := checkSingleStatement(name, src, f); d != nil {
			return nil, d
		}
	}

	return &Unit{Name: name, Source: src, Mode: mode, File: f}, nil
}

// checkSingleStatement rejects a second statement that starts on a later line
// than the first. "a = 1; b = 2" is still one interactive unit.
func checkSingleStatement(name, src string, f *syntax.File) *Diagnostic {
	if len(f.Stmts) < 2 {
		return nil
	}
	first := syntax.Start(f.Stmts[0]).Line
	for _, stmt := range f.Stmts[1:] {
		pos := syntax.Start(stmt)
		if pos.Line == first {
			continue
		}
		line, col := int(pos.Line), int(pos.Col)
		return &Diagnostic{
			Category: CategoryOther,
			Msg:      MultipleStatementsMsg,
			Filename: name,
			Line:     line,
			Col:      col,
			Offset:   offsetOf(src, line, col),
			Source:   src,
		}
	}
	return nil
}

func diagnose(name, src string, err error) *Diagnostic {
	var serr syntax.Error
	if !errors.As(err, &serr) {
		return &Diagnostic{
			Category: CategoryFatal,
			Msg:      err.Error(),
			Filename: name,
			Source:   src,
		}
	}

	d := &Diagnostic{
		Filename: name,
		Line:     int(serr.Pos.Line),
		Col:      int(serr.Pos.Col),
		Source:   src,
	}
	d.Offset = offsetOf(src, d.Line, d.Col)
	d.Category, d.Msg = categorize(src, d.Offset, serr.Msg)

	// Errors on the final newline token sit past the last line; point at
	// the end of the last line instead so the source can be shown.
	if d.Line > 1 && lineStart(src, d.Line) >= len(src) {
		d.Line, d.Col = lastLineEnd(src)
		d.Offset = offsetOf(src, d.Line, d.Col)
	}
	return d
}

// categorize maps a Starlark scanner or parser message onto a Category and
// the message the shell reports.
func categorize(src string, offset int, msg string) (Category, string) {
	switch {
	case msg == "unexpected EOF in string", msg == "unexpected newline in string":
		return CategoryUnterminatedString, msg

	case strings.HasSuffix(msg, "want indent"):
		got := strings.TrimSuffix(strings.TrimPrefix(msg, "got "), ", want indent")
		if !atEndOfInput(src, offset) {
			return CategoryOther, fmt.Sprintf("%s (got %s)", IndentedBlockMsg, got)
		}
		// A header whose body simply has not been typed yet. Only the
		// opening header of the unit is left to the block rules; a nested
		// header or a later clause is an ordinary unfinished statement.
		if codeLines(src) <= 1 {
			return CategoryOther, IndentedBlockMsg
		}
		return CategoryUnexpectedEOF, "unexpected end of input, want indented block"

	case strings.HasPrefix(msg, "got end of file"):
		return CategoryUnexpectedEOF, msg

	case strings.HasPrefix(msg, "got indent"):
		return CategoryIndentation, "unexpected indent"

	case strings.HasPrefix(msg, "got outdent"):
		return CategoryIndentation, "unexpected unindent"

	case strings.HasPrefix(msg, "unindent does not match"):
		return CategoryIndentation, msg

	case isLexical(msg):
		return CategoryLexical, msg
	}
	return CategoryOther, msg
}

var lexicalPrefixes = []string{
	"unexpected input character",
	"unexpected '",
	"stray backslash",
	"obsolete form of octal",
	"invalid escape",
}

func isLexical(msg string) bool {
	for _, p := range lexicalPrefixes {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return strings.HasPrefix(msg, "invalid ") && strings.HasSuffix(msg, " literal")
}
