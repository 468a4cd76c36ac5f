package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

type fdWriter interface {
	Fd() uintptr
}

var isTerminalFunc = term.IsTerminal

var lookupEnv = os.LookupEnv

// SetIsTerminalFuncForTesting overrides the terminal detection function and returns a restore function.
func SetIsTerminalFuncForTesting(fn func(int) bool) func() {
	previous := isTerminalFunc
	isTerminalFunc = fn
	return func() {
		isTerminalFunc = previous
	}
}

// IsTerminalWriter reports whether the writer wraps a file descriptor bound to a terminal.
func IsTerminalWriter(writer io.Writer) bool {
	if w, ok := writer.(fdWriter); ok {
		return isTerminalFunc(int(w.Fd()))
	}
	return false
}

// ShouldColorize is true for terminals unless NO_COLOR is set.
func ShouldColorize(writer io.Writer) bool {
	if _, disabled := lookupEnv("NO_COLOR"); disabled {
		return false
	}
	return IsTerminalWriter(writer)
}
