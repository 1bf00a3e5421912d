// Package logger builds prefixed charmbracelet/log loggers for the packages that want their own.
//
// Loggers write to stderr: in server mode stdout carries protocol frames.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger that follows the global level at creation time.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), log.GetLevel() == log.DebugLevel)
}

// NewWithConfig creates a logger writing to w.
func NewWithConfig(w io.Writer, prefix string, level log.Level, showTimestamp bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    false,
		ReportTimestamp: showTimestamp,
		Formatter:       log.TextFormatter,
	})
}

// Setup configures the global logger: debug enables debug level with
// timestamps, otherwise only warnings and errors are shown.
func Setup(debug bool) {
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}
