// Package logger provides the console output used by every command.
package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger writes user facing lines to out and failures to err.
// Quiet mode hides regular lines unless they are forced; debug mode shows everything.
type Logger struct {
	out   *log.Logger
	err   *log.Logger
	quiet bool
	debug bool
}

func New(out io.Writer, err io.Writer, quiet bool, debug bool) *Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return &Logger{
		out:   log.NewWithOptions(out, log.Options{Level: level}),
		err:   log.NewWithOptions(err, log.Options{Level: level}),
		quiet: quiet,
		debug: debug,
	}
}

func (logger *Logger) Log(message string, forceShow bool) {
	if logger.quiet && !forceShow && !logger.debug {
		return
	}
	logger.out.Print(message)
}

// Debug emits a levelled line with optional key/value pairs.
func (logger *Logger) Debug(message string, keyvals ...any) {
	if !logger.debug {
		return
	}
	logger.out.Debug(message, keyvals...)
}

func (logger *Logger) Error(message string) {
	logger.err.Print(message)
}

func (logger *Logger) Errorf(format string, args ...any) {
	logger.err.Printf(format, args...)
}
