package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/foldersync/pkg/models"
)

// Formatter renders the console echo of a running sync loop.
// Implementations include human-readable and JSON formatters.
type Formatter interface {
	// Start binds the formatter to its output
	Start(writer io.Writer) error

	// Message reports a lifecycle message ("Synchronization has started", ...)
	Message(msg string) error

	// Event reports one change applied to the destination
	Event(event models.ChangeEvent) error

	// Complete displays the summary of a finished tick
	Complete(report *models.TickReport) error

	// Error reports a failure
	Error(msg string, err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for a configured output format
func New(format string, quiet bool) (Formatter, error) {
	switch format {
	case "human", "":
		f := NewHumanFormatter()
		f.SetQuiet(quiet)
		return f, nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use: human, json)", format)
	}
}

// clock is overridden by tests
type clock func() time.Time
