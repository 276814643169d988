package repl

// ReadKind is the outcome of one ReadLine call.
type ReadKind int

const (
	// ReadText means a line was entered.
	ReadText ReadKind = iota
	// ReadInterrupt means the user pressed the interrupt key.
	ReadInterrupt
	// ReadEOF means input ended.
	ReadEOF
	// ReadIOError means the terminal or input stream failed.
	ReadIOError
	// ReadOther is any other editor failure.
	ReadOther
)

// ReadResult carries the line for ReadText and the cause for the error kinds.
type ReadResult struct {
	Kind ReadKind
	Text string
	Err  error
}

// LineEditor reads lines from the user and keeps the recall history.
type LineEditor interface {
	ReadLine(prompt string) ReadResult
	AddHistoryEntry(line string) error
	LoadHistory(path string) error
	SaveHistory(path string) error
}

// historyLister is implemented by editors that can list recorded entries.
type historyLister interface {
	History() []string
}
