package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger returns a logger writing to stderr at the given level.
// Unknown levels fall back to info.
func SetupLogger(level string) *log.Logger {
	return SetupLoggerTo(os.Stderr, level)
}

// SetupLoggerTo returns a logger writing to w at the given level
func SetupLoggerTo(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
