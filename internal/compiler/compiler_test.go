package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileErr(t *testing.T, src string, mode Mode) *Diagnostic {
	t.Helper()
	_, err := New(nil).Compile(src, mode, "<stdin>")
	require.Error(t, err, "expected %q to fail", src)

	var d *Diagnostic
	require.True(t, errors.As(err, &d), "error should be a *Diagnostic, got %T", err)
	return d
}

func TestCompile_Success(t *testing.T) {
	tests := []struct {
		name string
		src  string
		mode Mode
	}{
		{"assignment", "x = 1\n", ModeInteractive},
		{"expression", "1 + 2\n", ModeInteractive},
		{"empty", "", ModeInteractive},
		{"blank line", "\n", ModeInteractive},
		{"comment only", "# nothing here\n", ModeInteractive},
		{"semicolons on one line", "a = 1; b = 2\n", ModeInteractive},
		{"block", "if True:\n    x = 1\n", ModeInteractive},
		{"block with trailing blank", "if True:\n    x = 1\n\n", ModeInteractive},
		{"bracket continuation", "x = (1 +\n1)\n", ModeInteractive},
		{"triple quoted", "s = '''a\nb'''\n", ModeInteractive},
		{"file with many statements", "a = 1\nb = 2\n", ModeFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := New(nil).Compile(tt.src, tt.mode, "<stdin>")
			require.NoError(t, err)
			require.NotNil(t, unit)
			assert.Equal(t, "<stdin>", unit.Name)
			assert.Equal(t, tt.mode, unit.Mode)
			assert.NotNil(t, unit.File)
		})
	}
}

func TestCompile_Categories(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    Category
		wantMsg string
	}{
		{
			name: "open paren",
			src:  "x = (1 +\n",
			want: CategoryUnexpectedEOF,
		},
		{
			name: "open list",
			src:  "[1,\n",
			want: CategoryUnexpectedEOF,
		},
		{
			name: "backslash continuation",
			src:  "x = 1 + \\\n",
			want: CategoryUnexpectedEOF,
		},
		{
			name:    "opening block header",
			src:     "if True:\n",
			want:    CategoryOther,
			wantMsg: IndentedBlockMsg,
		},
		{
			name:    "opening block header after blank line",
			src:     "if True:\n\n",
			want:    CategoryOther,
			wantMsg: IndentedBlockMsg,
		},
		{
			name:    "header followed by unindented code",
			src:     "if True:\nx = 1\n",
			want:    CategoryOther,
			wantMsg: IndentedBlockMsg + " (got identifier)",
		},
		{
			name: "nested header at end of input",
			src:  "def f():\n    if x:\n",
			want: CategoryUnexpectedEOF,
		},
		{
			name: "else clause at end of input",
			src:  "if True:\n    x = 1\nelse:\n",
			want: CategoryUnexpectedEOF,
		},
		{
			name:    "unexpected indent",
			src:     "  x = 1\n",
			want:    CategoryIndentation,
			wantMsg: "unexpected indent",
		},
		{
			name: "unindent mismatch",
			src:  "if True:\n    x = 1\n  y = 2\n",
			want: CategoryIndentation,
		},
		{
			name: "unterminated single quote",
			src:  "x = 'abc\n",
			want: CategoryUnterminatedString,
		},
		{
			name: "unterminated triple quote",
			src:  "x = '''abc\n",
			want: CategoryUnterminatedString,
		},
		{
			name: "stray character",
			src:  "1 $ 2\n",
			want: CategoryLexical,
		},
		{
			name: "unbalanced close",
			src:  "x = )\n",
			want: CategoryLexical,
		},
		{
			name: "dangling operator",
			src:  "x = 1 +\n",
			want: CategoryOther,
		},
		{
			name:    "two statements",
			src:     "x = 1\ny = 2\n",
			want:    CategoryOther,
			wantMsg: MultipleStatementsMsg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := compileErr(t, tt.src, ModeInteractive)
			assert.Equal(t, tt.want, d.Category, "category for %q (msg %q)", tt.src, d.Msg)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, d.Msg)
			}
			assert.Equal(t, tt.src, d.Source)
			assert.GreaterOrEqual(t, d.Offset, 0)
			assert.LessOrEqual(t, d.Offset, len(d.Source))
		})
	}
}

func TestCompile_StringOffsetPointsAtQuote(t *testing.T) {
	d := compileErr(t, "x = '''abc\n", ModeInteractive)
	assert.Equal(t, 1, d.Line)
	assert.Equal(t, 5, d.Col)
	assert.Equal(t, "'''", d.Source[d.Offset:d.Offset+3])
}

func TestCompile_NormalizesLineEndings(t *testing.T) {
	d := compileErr(t, "y = 1\r\nx = '''abc\r\n", ModeFile)
	assert.Equal(t, CategoryUnterminatedString, d.Category)
	assert.Equal(t, "y = 1\nx = '''abc\n", d.Source)
	assert.Equal(t, "'''", d.Source[d.Offset:d.Offset+3])
}

func TestDiagnostic_SourceLine(t *testing.T) {
	d := compileErr(t, "a = [\n  1,\n  $\n]\n", ModeInteractive)
	assert.Equal(t, 3, d.Line)
	assert.Equal(t, "  $", d.SourceLine())
	assert.Contains(t, d.Error(), "<stdin>:3:")
}

func TestDiagnostic_PositionAfterLastLine(t *testing.T) {
	d := compileErr(t, "if x\n", ModeInteractive)
	assert.Equal(t, 1, d.Line)
	assert.Equal(t, 5, d.Col)
	assert.Equal(t, 4, d.Offset)
	assert.Equal(t, "if x", d.SourceLine())

	d = compileErr(t, "y = [1,\n  2\n", ModeFile)
	assert.Equal(t, "  2", d.SourceLine())
}

func TestLastLineEnd(t *testing.T) {
	tests := []struct {
		src  string
		line int
		col  int
	}{
		{"if x\n", 1, 5},
		{"a\nçd\n\n", 2, 3},
		{"", 1, 1},
	}
	for _, tt := range tests {
		line, col := lastLineEnd(tt.src)
		assert.Equal(t, tt.line, line, "line for %q", tt.src)
		assert.Equal(t, tt.col, col, "col for %q", tt.src)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", NormalizeNewlines("a\r\nb\rc\n"))
	assert.Equal(t, "plain\n", NormalizeNewlines("plain\n"))
}

func TestOffsetOf(t *testing.T) {
	src := "ab\nçd\n"
	assert.Equal(t, 0, offsetOf(src, 1, 1))
	assert.Equal(t, 3, offsetOf(src, 2, 1))
	assert.Equal(t, 5, offsetOf(src, 2, 2), "ç is two bytes")
	assert.Equal(t, len(src), offsetOf(src, 3, 1))
	assert.Equal(t, len(src), offsetOf(src, 9, 1))
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "indentation", CategoryIndentation.String())
	assert.Equal(t, "category(42)", Category(42).String())
}
