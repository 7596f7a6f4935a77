package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/foldersync/pkg/logging"
	"github.com/sdejongh/foldersync/pkg/models"
)

// HumanFormatter echoes timestamped lines: "01/02/2006 03:04:05 PM - message"
type HumanFormatter struct {
	writer io.Writer
	quiet  bool
	now    clock
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{now: time.Now}
}

// SetQuiet suppresses everything except errors
func (f *HumanFormatter) SetQuiet(quiet bool) {
	f.quiet = quiet
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Message echoes a lifecycle message
func (f *HumanFormatter) Message(msg string) error {
	if f.quiet {
		return nil
	}
	return f.line(msg)
}

// Event echoes a change event
func (f *HumanFormatter) Event(event models.ChangeEvent) error {
	if f.quiet {
		return nil
	}
	return f.line(event.String())
}

// Complete echoes the end of a tick with a one-line summary
func (f *HumanFormatter) Complete(report *models.TickReport) error {
	if f.quiet {
		return nil
	}

	stats := &report.Stats
	if stats.Changes() == 0 {
		return f.line(fmt.Sprintf("Synchronization completed: up to date (%s)",
			report.Duration.Round(time.Millisecond)))
	}

	return f.line(fmt.Sprintf(
		"Synchronization completed: %d created, %d copied, %d removed, %d folders created, %d folders removed, %s copied (%s)",
		stats.FilesCreated.Load(), stats.FilesCopied.Load(), stats.FilesRemoved.Load(),
		stats.DirsCreated.Load(), stats.DirsRemoved.Load(),
		humanize.Bytes(uint64(stats.BytesCopied.Load())),
		report.Duration.Round(time.Millisecond)))
}

// Error echoes a failure
func (f *HumanFormatter) Error(msg string, err error) error {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return f.line(msg)
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func (f *HumanFormatter) line(msg string) error {
	if f.writer == nil {
		return nil
	}
	_, err := fmt.Fprintf(f.writer, "%s - %s\n", f.now().Format(logging.ClassicTimeLayout), msg)
	return err
}
