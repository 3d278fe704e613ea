package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdsantisteban/todo-frontend/internal/engine"
)

// usageError is a mistake in the invocation; it exits 2.
type usageError struct {
	msg  string
	hint string
}

func (e *usageError) Error() string { return e.msg }

var errNotLoggedIn = &usageError{msg: "not logged in. Run: todo login"}

func errUsage(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// reportedError wraps a failure the console notifier already printed.
type reportedError struct{ Err error }

func (e *reportedError) Error() string { return e.Err.Error() }
func (e *reportedError) Unwrap() error  { return e.Err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{Err: err}
}

// ExitCode maps an error to the process exit code: 0 ok, 1 error, 2 usage.
func ExitCode(err error) int {
	var use *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &use), engine.IsValidation(err), errors.Is(err, engine.ErrUnauthenticated):
		return 2
	}
	return 1
}

// exactArgs is cobra.ExactArgs with a "usage:" message.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errUsage("usage: %s", usage)
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errUsage("usage: %s", usage)
		}
		return nil
	}
}
