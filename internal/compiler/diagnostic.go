package compiler

import "fmt"

// Category is the discriminant of a compile failure. The completeness
// classifier decides between "keep reading" and "report now" on this value
// alone (plus the offset for unterminated strings).
type Category int

// Diagnostic categories.
const (
	// CategoryUnexpectedEOF means input ended in the middle of a statement.
	CategoryUnexpectedEOF Category = iota
	// CategoryUnterminatedTriple is an unterminated triple-quoted string.
	CategoryUnterminatedTriple
	// CategoryUnterminatedString is an unterminated string of unknown quoting.
	CategoryUnterminatedString
	// CategoryLexical covers malformed literals and stray characters.
	CategoryLexical
	// CategoryIndentation covers unexpected indents and unindents.
	CategoryIndentation
	// CategoryOther is a generic syntax error; Msg is significant.
	CategoryOther
	// CategoryFatal is anything that is not a syntax error at all.
	CategoryFatal
)

var categoryNames = map[Category]string{
	CategoryUnexpectedEOF:      "unexpected-eof",
	CategoryUnterminatedTriple: "unterminated-triple-string",
	CategoryUnterminatedString: "unterminated-string",
	CategoryLexical:            "lexical",
	CategoryIndentation:        "indentation",
	CategoryOther:              "syntax",
	CategoryFatal:              "fatal",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Diagnostic describes why a compile failed.
//
// Offset is a byte offset into Source, which is the exact (newline
// normalized) text handed to the parser.
type Diagnostic struct {
	Category Category
	Msg      string
	Filename string
	Line     int
	Col      int
	Offset   int
	Source   string
}

func (d *Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", d.Filename, d.Line, d.Col, d.Msg)
	}
	return fmt.Sprintf("%s: %s", d.Filename, d.Msg)
}

// SourceLine returns the text of the line the diagnostic points at, without
// its line break. It returns "" when the position is unknown.
func (d *Diagnostic) SourceLine() string {
	if d.Line < 1 {
		return ""
	}
	start := lineStart(d.Source, d.Line)
	if start >= len(d.Source) {
		return ""
	}
	end := start
	for end < len(d.Source) && d.Source[end] != '\n' {
		end++
	}
	return d.Source[start:end]
}
