package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE [ARGS...]",
		Short: "Execute a Starlark file",
		Long: `Execute a Starlark file as a script.

The file and any following arguments are exposed to the script as sys.argv.
A call to exit(N) ends the process with status N; any other error is reported
and the process exits with status 1.`,
		Example: `  # Run a script
  starshell run build.star

  # Pass arguments through to the script
  starshell run gen.star --out dist`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, args)
		},
	}

	// Everything after FILE belongs to the script.
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runFile(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return RunSource(cmd, args[0], string(src), args)
}
