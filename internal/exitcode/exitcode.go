// Package exitcode carries process exit statuses on returned errors so that
// commands never call os.Exit themselves.
package exitcode

import (
	"errors"
	"fmt"
)

const (
	Success = 0
	Failure = 1
	// Usage covers bad invocations, unmet preconditions and partial downloads.
	Usage = 2

	Interrupted = 130
	Terminated  = 143
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

func (exitErr *ExitError) Error() string {
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return fmt.Sprintf("exit status %d", exitErr.Code)
}

func (exitErr *ExitError) Unwrap() error {
	return exitErr.Err
}

func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

func UsageError(err error) error {
	return Wrap(Usage, err)
}

// CodeOf returns the exit status an error maps to. Errors without an explicit
// code are fatal.
func CodeOf(err error) int {
	if err == nil {
		return Success
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return Failure
}
