// Package logger provides the shared structured logger for the registry
// sync tool. Messages go to stderr; enabling verbose mode lowers the level
// to debug so discovery and batch progress become visible.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var std = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
	Level:           log.InfoLevel,
})

// SetVerbose enables or disables debug-level logging.
func SetVerbose(v bool) {
	if v {
		std.SetLevel(log.DebugLevel)
	} else {
		std.SetLevel(log.InfoLevel)
	}
}

// SetOutput sets the output writer. Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Debug logs a debug message with optional key/value pairs.
func Debug(msg string, keyvals ...any) {
	std.Debug(msg, keyvals...)
}

// Info logs an informational message with optional key/value pairs.
func Info(msg string, keyvals ...any) {
	std.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key/value pairs.
func Warn(msg string, keyvals ...any) {
	std.Warn(msg, keyvals...)
}

// Error logs an error message with optional key/value pairs.
func Error(msg string, keyvals ...any) {
	std.Error(msg, keyvals...)
}
