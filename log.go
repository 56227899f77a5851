package lightpillar

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger creates a logger with the package prefix and timestamp format.
// The logger writes to w and filters messages below level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "lightpillar",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// defaultLogger is used when Options.Logger is nil.
func defaultLogger() *log.Logger {
	return NewLogger(os.Stderr, log.InfoLevel)
}
