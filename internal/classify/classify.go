// Package classify decides what the shell should do with the text typed so far.
//
// After every submitted line the accumulated buffer is compiled once and the
// outcome is reduced to a Verdict: run it, report it, or ask for more input
// (one more line, or lines until a blank one). The decision is driven only by
// the compiler's diagnostics; nothing here counts brackets or indentation.
package classify

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/starshell/internal/compiler"
)

// Kind enumerates the possible verdicts.
type Kind int

const (
	// Complete means the buffer compiled.
	Complete Kind = iota
	// ContinueLine means the statement is unterminated; one more line may finish it.
	ContinueLine
	// ContinueBlock means a block is open; keep reading until a blank line.
	ContinueBlock
	// Failed means the buffer is invalid and the diagnostic should be reported.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Complete:
		return "complete"
	case ContinueLine:
		return "continue-line"
	case ContinueBlock:
		return "continue-block"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Verdict is the result of one classification.
//
// For Complete, Unit is nil when the parse succeeded in the middle of a block
// on a non-blank line: the block may still grow, so nothing runs yet.
// Diagnostic is set only for Failed.
type Verdict struct {
	Kind       Kind
	Unit       *compiler.Unit
	Diagnostic *compiler.Diagnostic
}

// Compiler is the compile contract the classifier depends on.
// A failed compile must return an error wrapping a *compiler.Diagnostic.
type Compiler interface {
	Compile(source string, mode compiler.Mode, name string) (*compiler.Unit, error)
}

// DefaultUnitName is the unit name used for interactive input.
const DefaultUnitName = "<stdin>"

// Classifier holds the compiler collaborator. It keeps no per-call state.
type Classifier struct {
	compiler Compiler
	name     string
}

// New creates a classifier compiling interactive units named DefaultUnitName.
func New(c Compiler) *Classifier {
	return &Classifier{compiler: c, name: DefaultUnitName}
}

// Classify compiles source and reduces the outcome to a Verdict.
//
// hadEmptyLine reports whether the line just typed was empty; a blank line
// means the user considers the input finished, so any leftover error is
// reported instead of absorbed. continuingBlock reports whether the caller is
// already accumulating a block.
func (c *Classifier) Classify(source string, hadEmptyLine, continuingBlock bool) Verdict {
	// Offsets in diagnostics refer to the normalized text, and the
	// triple-quote lookback below must read that same text.
	src := compiler.NormalizeNewlines(source)

	unit, err := c.compiler.Compile(src, compiler.ModeInteractive, c.name)
	if err == nil {
		if hadEmptyLine || !continuingBlock {
			return Verdict{Kind: Complete, Unit: unit}
		}
		return Verdict{Kind: Complete}
	}

	diag := asDiagnostic(err, c.name, src)

	switch diag.Category {
	case compiler.CategoryUnexpectedEOF, compiler.CategoryUnterminatedTriple:
		return Verdict{Kind: ContinueLine}
	case compiler.CategoryUnterminatedString:
		if TripleQuoteAt(src, diag.Offset) {
			return Verdict{Kind: ContinueLine}
		}
	}

	if hadEmptyLine || isFatal(diag, continuingBlock) {
		return Verdict{Kind: Failed, Diagnostic: diag}
	}
	return Verdict{Kind: ContinueBlock}
}

// isFatal reports whether diag must be surfaced even though more lines could follow.
// Indentation complaints are expected while a block is still being opened;
// once inside a block they are real.
func isFatal(diag *compiler.Diagnostic, continuingBlock bool) bool {
	switch diag.Category {
	case compiler.CategoryIndentation:
		return continuingBlock
	case compiler.CategoryOther:
		if ExpectsIndentedBlock(diag.Msg) {
			return continuingBlock
		}
	}
	return true
}

// ExpectsIndentedBlock reports whether a generic syntax error message says a
// block header is missing its body. This is the only place the classifier
// depends on message wording.
func ExpectsIndentedBlock(msg string) bool {
	return strings.HasPrefix(msg, compiler.IndentedBlockMsg)
}

func asDiagnostic(err error, name, src string) *compiler.Diagnostic {
	var diag *compiler.Diagnostic
	if errors.As(err, &diag) {
		return diag
	}
	return &compiler.Diagnostic{
		Category: compiler.CategoryFatal,
		Msg:      err.Error(),
		Filename: name,
		Source:   src,
	}
}
