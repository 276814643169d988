package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.starlark.net/starlark"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display starshell version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "starshell v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit %s, built %s\n", commit, buildDate)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Interactive Starlark shell (bytecode v%d)\n", starlark.CompilerVersion)
		},
	}
}
