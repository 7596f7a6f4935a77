package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/foldersync/pkg/models"
)

// JSONFormatter streams one JSON object per line for automation and scripting
type JSONFormatter struct {
	writer  io.Writer
	encoder *json.Encoder
	now     clock
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONChangeData represents a change event
type JSONChangeData struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Operation string `json:"operation"`
}

// JSONReportData represents the summary of one tick
type JSONReportData struct {
	TickID     string        `json:"tick_id"`
	Status     string        `json:"status"`
	Duration   string        `json:"duration"`
	DurationMs int64         `json:"duration_ms"`
	Stats      JSONStatsData `json:"stats"`
}

// JSONStatsData represents tick statistics in JSON format
type JSONStatsData struct {
	FilesCreated   int32 `json:"files_created"`
	FilesCopied    int32 `json:"files_copied"`
	FilesRemoved   int32 `json:"files_removed"`
	FilesUnchanged int32 `json:"files_unchanged"`
	DirsCreated    int32 `json:"dirs_created"`
	DirsRemoved    int32 `json:"dirs_removed"`
	BytesCopied    int64 `json:"bytes_copied"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{now: time.Now}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.encoder = json.NewEncoder(writer)
	return nil
}

// Message emits a "message" event
func (f *JSONFormatter) Message(msg string) error {
	return f.emit("message", map[string]string{"message": msg})
}

// Event emits a "change" event
func (f *JSONFormatter) Event(event models.ChangeEvent) error {
	return f.emit("change", JSONChangeData{
		Path:      event.Path,
		Kind:      string(event.Kind),
		Operation: string(event.Op),
	})
}

// Complete emits a "complete" event carrying the tick statistics
func (f *JSONFormatter) Complete(report *models.TickReport) error {
	stats := &report.Stats
	return f.emit("complete", JSONReportData{
		TickID:     report.ID,
		Status:     string(report.Status),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			FilesCreated:   stats.FilesCreated.Load(),
			FilesCopied:    stats.FilesCopied.Load(),
			FilesRemoved:   stats.FilesRemoved.Load(),
			FilesUnchanged: stats.FilesUnchanged.Load(),
			DirsCreated:    stats.DirsCreated.Load(),
			DirsRemoved:    stats.DirsRemoved.Load(),
			BytesCopied:    stats.BytesCopied.Load(),
		},
	})
}

// Error emits an "error" event
func (f *JSONFormatter) Error(msg string, err error) error {
	data := JSONErrorData{Message: msg}
	if err != nil {
		data.Error = err.Error()
	}
	return f.emit("error", data)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) emit(eventType string, data any) error {
	if f.encoder == nil {
		return nil
	}
	return f.encoder.Encode(JSONEvent{
		Timestamp: f.now(),
		Type:      eventType,
		Data:      data,
	})
}
