package logger

import (
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// Logger writes leveled, prefixed log lines. Info and Warn go to the
// regular output, Error to the error output.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

// New returns a Logger writing to stdout and stderr.
func New() *Logger {
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters returns a Logger writing to the given outputs.
func NewWithWriters(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	return &Logger{
		info:  log.New(out, color.GreenString("[INFO] "), flags),
		warn:  log.New(out, color.YellowString("[WARN] "), flags),
		error: log.New(errOut, color.RedString("[ERROR] "), flags),
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWithWriters(io.Discard, io.Discard)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.info.Printf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.warn.Printf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.error.Printf(format, args...)
}

// Fatal logs at error level and exits.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.error.Fatalf(format, args...)
}
