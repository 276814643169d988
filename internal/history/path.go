package history

import (
	"os"
	"path/filepath"
)

// FallbackPath is used when no per-user config directory is available.
const FallbackPath = ".repl_history.txt"

// DefaultPath returns <user config dir>/starshell/repl_history.txt, or
// FallbackPath relative to the working directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return FallbackPath
	}
	return filepath.Join(dir, "starshell", "repl_history.txt")
}
