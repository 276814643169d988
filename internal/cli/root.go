// Package cli provides the command-line interface for starshell.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starshell/internal/cli/commands"
	"github.com/leapstack-labs/starshell/internal/cli/config"
	"github.com/leapstack-labs/starshell/internal/engine"
)

var (
	cfgFile string
	command string
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "starshell [FILE [ARGS...]]",
		Short: "starshell - an interactive Starlark shell",
		Long: `starshell is a read-eval-print loop for the Starlark language.

With no arguments and a terminal on stdin it starts an interactive session
with line editing, persistent history and multi-line input. Given a FILE,
piped input or -c CODE it runs that program instead.`,
		Example: `  # Start the interactive shell
  starshell

  # Evaluate a snippet
  starshell -c 'print(1 + 2)'

  # Run a script with arguments
  starshell build.star --release`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := config.NewLogger(cmd.ErrOrStderr(), cfg)
			if used := config.GetConfigFileUsed(); used != "" {
				logger.Debug("using config file", "path", used)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			cmd.SetContext(config.WithLogger(ctx, logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, cmd.InOrStdin())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Interactive Starlark shell built with Go
`)

	// Arguments after FILE belong to the script.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "Program passed in as a string")

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./starshell.yaml)")
	rootCmd.PersistentFlags().String("history-file", "", "Path to the history file")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringSlice("startup", nil, "Files to execute before the first prompt")
	rootCmd.PersistentFlags().String("ps1", "", "Primary prompt")
	rootCmd.PersistentFlags().String("ps2", "", "Continuation prompt")
	rootCmd.PersistentFlags().Bool("banner", true, "Print a banner when the shell starts")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// runRoot picks the mode: -c CODE, a FILE argument, piped stdin, or the REPL.
func runRoot(cmd *cobra.Command, args []string, stdin io.Reader) error {
	switch {
	case cmd.Flags().Changed("command"):
		return commands.RunSource(cmd, "<string>", command, append([]string{"-c"}, args...))
	case len(args) > 0:
		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		return commands.RunSource(cmd, args[0], string(src), args)
	case stdin != os.Stdin || !commands.IsTerminal(stdin):
		src, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return commands.RunSource(cmd, "<stdin>", string(src), []string{""})
	}
	return commands.RunREPL(cmd, Version)
}

// Execute runs the root command.
func Execute() error {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(rootCmd *cobra.Command, stderr io.Writer) error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	var exit *engine.ExitError
	if errors.As(err, &exit) {
		if exit.Message != "" {
			_, _ = fmt.Fprintln(stderr, exit.Message)
		}
		return err
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return err
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for starshell.

To load completions:

Bash:
  $ source <(starshell completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ starshell completion bash > /etc/bash_completion.d/starshell
  # macOS:
  $ starshell completion bash > $(brew --prefix)/etc/bash_completion.d/starshell

Zsh:
  $ starshell completion zsh > "${fpath[1]}/_starshell"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ starshell completion fish | source

  # To load completions for each session, execute once:
  $ starshell completion fish > ~/.config/fish/completions/starshell.fish

PowerShell:
  PS> starshell completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
