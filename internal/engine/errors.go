package engine

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
)

// ErrKeyboardInterrupt is the error delivered when the user interrupts input.
var ErrKeyboardInterrupt = errors.New("KeyboardInterrupt")

// ExitError asks the shell to terminate the process with Code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// IsProcessTerminationSignal reports whether err asks for the process to exit.
func IsProcessTerminationSignal(err error) bool {
	var exit *ExitError
	return errors.As(err, &exit)
}

// newExitBuiltin returns exit([status]): None exits 0, an int exits with that
// status, anything else is printed and exits 1.
func newExitBuiltin(name string) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var status starlark.Value = starlark.None
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0, &status); err != nil {
			return nil, err
		}

		switch v := status.(type) {
		case starlark.NoneType:
			return nil, &ExitError{Code: 0}
		case starlark.Int:
			code, err := starlark.AsInt32(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", b.Name(), err)
			}
			return nil, &ExitError{Code: code}
		case starlark.String:
			return nil, &ExitError{Code: 1, Message: string(v)}
		default:
			return nil, &ExitError{Code: 1, Message: v.String()}
		}
	})
}
