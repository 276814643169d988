package compiler

import (
	"strings"
	"unicode/utf8"
)

// NormalizeNewlines rewrites "\r\n" and lone "\r" line endings to "\n".
// Offsets reported by Compile refer to the normalized text.
func NormalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// lineStart returns the byte offset of the first character of the 1-based
// line, or len(src) when the source has fewer lines.
func lineStart(src string, line int) int {
	off := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(src[off:], '\n')
		if i < 0 {
			return len(src)
		}
		off += i + 1
	}
	return off
}

// lastLineEnd returns the position just past the last character of the
// last non-empty line.
func lastLineEnd(src string) (line, col int) {
	body := strings.TrimRight(src, "\n")
	line = strings.Count(body, "\n") + 1
	last := body[strings.LastIndexByte(body, '\n')+1:]
	return line, utf8.RuneCountInString(last) + 1
}

// offsetOf converts a parser position (1-based line, 1-based rune column)
// into a byte offset into src.
func offsetOf(src string, line, col int) int {
	if line < 1 {
		return 0
	}
	off := lineStart(src, line)
	for c := 1; c < col && off < len(src) && src[off] != '\n'; c++ {
		_, size := utf8.DecodeRuneInString(src[off:])
		off += size
	}
	return off
}

// atEndOfInput reports whether nothing but blank lines and comments follow offset.
func atEndOfInput(src string, offset int) bool {
	if offset >= len(src) {
		return true
	}
	for _, line := range strings.Split(src[offset:], "\n") {
		if !isBlankOrComment(line) {
			return false
		}
	}
	return true
}

// codeLines counts the lines that hold something other than whitespace or a comment.
func codeLines(src string) int {
	n := 0
	for _, line := range strings.Split(src, "\n") {
		if !isBlankOrComment(line) {
			n++
		}
	}
	return n
}

func isBlankOrComment(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}
