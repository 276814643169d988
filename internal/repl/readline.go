package repl

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/chzyer/readline"

	"github.com/leapstack-labs/starshell/internal/history"
)

// EditorOptions configures a Readline editor.
type EditorOptions struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer
	// HistoryLimit caps the entries kept on disk and for recall; 0 keeps all.
	HistoryLimit int
	// Names supplies completion candidates. It is called on every Tab press.
	Names  func() []string
	Logger *slog.Logger
}

// Readline is a LineEditor backed by chzyer/readline.
//
// Readline itself only keeps recall history in memory; persistence goes
// through a history.Store so that the file is written at loop exit only.
type Readline struct {
	rl     *readline.Instance
	store  *history.Store
	logger *slog.Logger
}

var _ LineEditor = (*Readline)(nil)

// NewReadline creates a terminal line editor.
func NewReadline(opts EditorOptions) (*Readline, error) {
	// readline treats 0 as its own default and negative as disabled, so an
	// unbounded store gets the largest recall buffer instead.
	recall := opts.HistoryLimit
	if recall <= 0 {
		recall = math.MaxInt32
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := &readline.Config{
		HistoryLimit:           recall,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "",
		Stdin:                  opts.Stdin,
		Stdout:                 opts.Stdout,
		Stderr:                 opts.Stderr,
	}
	if opts.Names != nil {
		cfg.AutoComplete = &identCompleter{names: opts.Names}
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return &Readline{rl: rl, store: history.NewStore(opts.HistoryLimit), logger: logger}, nil
}

// ReadLine shows prompt and reads one line.
func (r *Readline) ReadLine(prompt string) ReadResult {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	switch {
	case err == nil:
		return ReadResult{Kind: ReadText, Text: line}
	case errors.Is(err, readline.ErrInterrupt):
		return ReadResult{Kind: ReadInterrupt, Err: err}
	case errors.Is(err, io.EOF):
		return ReadResult{Kind: ReadEOF, Err: err}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, fs.ErrClosed) {
		return ReadResult{Kind: ReadIOError, Err: err}
	}
	return ReadResult{Kind: ReadOther, Err: err}
}

// AddHistoryEntry records line for recall and for the next SaveHistory.
func (r *Readline) AddHistoryEntry(line string) error {
	if !r.store.Add(line) {
		return nil
	}
	return r.rl.SaveHistory(strings.TrimRight(line, " \t\r\n"))
}

// LoadHistory reads path into the store and the recall buffer.
func (r *Readline) LoadHistory(path string) error {
	if err := r.store.Load(path); err != nil {
		return err
	}
	for _, entry := range r.store.Entries() {
		if err := r.rl.SaveHistory(entry); err != nil {
			return err
		}
	}
	r.logger.Debug("history loaded", slog.String("path", path), slog.Int("entries", len(r.store.Entries())))
	return nil
}

// SaveHistory appends the entries added during the session to path.
func (r *Readline) SaveHistory(path string) error {
	return r.store.Save(path)
}

// History returns the recorded entries, oldest first.
func (r *Readline) History() []string {
	return r.store.Entries()
}

// Close restores the terminal.
func (r *Readline) Close() error {
	return r.rl.Close()
}

// identCompleter completes the identifier, or dot command, under the cursor.
type identCompleter struct {
	names func() []string
}

func (c *identCompleter) Do(line []rune, pos int) ([][]rune, int) {
	if pos > len(line) {
		pos = len(line)
	}
	start := pos
	for start > 0 && isIdentRune(line[start-1]) {
		start--
	}

	var candidates []string
	if start == 1 && line[0] == '.' && pos == len(line) {
		start = 0
		candidates = dotCommandNames()
	} else {
		if start == pos {
			return nil, 0
		}
		if start > 0 && line[start-1] == '.' {
			// Attribute access; nothing useful to offer without evaluating.
			return nil, 0
		}
		candidates = c.names()
	}

	prefix := string(line[start:pos])
	var out [][]rune
	for _, name := range candidates {
		if strings.HasPrefix(name, prefix) && name != prefix {
			out = append(out, []rune(name[len(prefix):]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return string(out[i]) < string(out[j]) })
	return out, len([]rune(prefix))
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
