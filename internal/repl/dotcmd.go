package repl

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.starlark.net/starlark"
)

type dotCommand struct {
	name string
	args []string
}

var dotCommands = map[string]string{
	".help":    "Show this help message",
	".globals": "List global bindings",
	".history": "Show input history",
	".clear":   "Clear the screen",
	".quit":    "Exit the shell",
	".exit":    "Exit the shell",
}

func dotCommandNames() []string {
	names := make([]string, 0, len(dotCommands))
	for name := range dotCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseDotCommand recognizes lines such as ".help" or ".history 10".
// Starlark source never starts with a dot, so these cannot shadow code.
func parseDotCommand(line string) (dotCommand, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || trimmed[0] != '.' {
		return dotCommand{}, false
	}
	c := trimmed[1]
	if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
		return dotCommand{}, false
	}
	parts := strings.Fields(trimmed)
	return dotCommand{name: strings.ToLower(parts[0]), args: parts[1:]}, true
}

// globalsLister is implemented by executors that expose their bindings.
type globalsLister interface {
	Globals() starlark.StringDict
}

func (l *Loop) runDotCommand(cmd dotCommand) error {
	out := l.cfg.Stdout

	switch cmd.name {
	case ".quit", ".exit":
		return errQuit

	case ".help":
		printHelp(out)

	case ".globals":
		g, ok := l.cfg.Executor.(globalsLister)
		if !ok {
			_, _ = fmt.Fprintln(l.cfg.Stderr, "Globals are not available")
			return nil
		}
		renderGlobals(out, g.Globals())

	case ".history":
		h, ok := l.cfg.Editor.(historyLister)
		if !ok {
			_, _ = fmt.Fprintln(l.cfg.Stderr, "History is not available")
			return nil
		}
		entries := h.History()
		if len(cmd.args) > 0 {
			var n int
			if _, err := fmt.Sscanf(cmd.args[0], "%d", &n); err != nil || n < 0 {
				_, _ = fmt.Fprintln(l.cfg.Stderr, "Usage: .history [count]")
				return nil
			}
			if n < len(entries) {
				entries = entries[len(entries)-n:]
			}
		}
		start := len(h.History()) - len(entries)
		for i, e := range entries {
			_, _ = fmt.Fprintf(out, "%5d  %s\n", start+i+1, e)
		}

	case ".clear":
		_, _ = fmt.Fprint(out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(l.cfg.Stderr, "Unknown command: %s (type .help for commands)\n", cmd.name)
	}
	return nil
}

func printHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .globals          List global bindings
  .history [count]  Show input history
  .clear            Clear the screen
  .quit / .exit     Exit the shell

Tips:
  - A compound statement ends with a blank line
  - Use arrow keys to navigate history
  - Tab completes names and dot commands
  - Set sys.ps1 and sys.ps2 to change the prompts
`
	_, _ = fmt.Fprintln(w, help)
}

func renderGlobals(w io.Writer, globals starlark.StringDict) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Type", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 60, WidthMaxEnforcer: text.Trim},
	})

	for _, name := range globals.Keys() {
		v := globals[name]
		t.AppendRow(table.Row{name, v.Type(), v.String()})
	}
	t.Render()
}
