// Package history persists the lines typed at the shell prompt.
//
// The file format is one submitted line per record, newline delimited and
// append ordered.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLimit caps the number of records kept on disk.
const DefaultLimit = 1000

// Store is an in-memory copy of the history file plus the records that have
// not been written yet.
type Store struct {
	limit   int
	entries []string
	saved   int
}

// NewStore creates an empty store keeping at most limit records.
// A limit <= 0 keeps everything.
func NewStore(limit int) *Store {
	return &Store{limit: limit}
}

// Load reads the records in path. A missing file leaves the store empty and
// returns fs.ErrNotExist wrapped, so callers can tell it apart from real failures.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = f.Close() }()

	var loaded []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			loaded = append(loaded, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read history %s: %w", path, err)
	}

	s.entries = append(loaded, s.entries[s.saved:]...)
	s.saved = len(loaded)
	return nil
}

// Add records line with trailing whitespace removed.
// It reports whether the line was recorded; blank lines are not.
func (s *Store) Add(line string) bool {
	line = strings.TrimRight(line, " \t\r\n")
	if line == "" {
		return false
	}
	// One record per line keeps the file format flat.
	line = strings.ReplaceAll(line, "\n", " ")
	s.entries = append(s.entries, line)
	return true
}

// Entries returns every record, oldest first.
func (s *Store) Entries() []string {
	return s.entries
}

// Pending returns the records added since the last Load or Save.
func (s *Store) Pending() []string {
	return s.entries[s.saved:]
}

// Save appends pending records to path, creating its directory when needed.
// When the file would exceed the limit it is rewritten with the newest records.
func (s *Store) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}

	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
		if err := writeAll(path, s.entries); err != nil {
			return err
		}
		s.saved = len(s.entries)
		return nil
	}

	pending := s.Pending()
	if len(pending) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if err := writeLines(f, pending); err != nil {
		_ = f.Close()
		return fmt.Errorf("write history %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close history %s: %w", path, err)
	}
	s.saved = len(s.entries)
	return nil
}

func writeAll(path string, lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*")
	if err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	if err := writeLines(tmp, lines); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write history %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeLines(f *os.File, lines []string) error {
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// IsNotExist reports whether err comes from loading a history file that does not exist yet.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
