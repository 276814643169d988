// Package main provides the starshell command, an interactive Starlark shell.
package main

import (
	"errors"
	"os"

	"github.com/leapstack-labs/starshell/internal/cli"
	"github.com/leapstack-labs/starshell/internal/engine"
)

func main() {
	os.Exit(exitCode(cli.Execute()))
}

// exitCode maps the error returned by the CLI onto a process status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *engine.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}
