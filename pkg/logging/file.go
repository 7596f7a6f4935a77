package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultLogFile is used when no log path is configured
const DefaultLogFile = "folder_sync.log"

// ClassicTimeLayout is the timestamp layout shared by classic log lines and the console echo
const ClassicTimeLayout = "01/02/2006 03:04:05 PM"

// Format represents the log output format
type Format string

const (
	// FormatClassic writes "LEVEL: timestamp: message" lines
	FormatClassic Format = "classic"
	FormatJSON    Format = "json"
	FormatText    Format = "text"
)

// ParseFormat maps a config string to a Format, defaulting to classic
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatClassic
	}
}

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// fileSink is the destination shared by a logger and its WithFields children.
// file is nil for stream loggers, which never rotate.
type fileSink struct {
	mu          sync.Mutex
	out         io.Writer
	file        *os.File
	closed      bool
	currentSize int64
}

// FileLogger implements Logger interface with file output
type FileLogger struct {
	config FileLoggerConfig
	sink   *fileSink
	fields Fields
}

// NewFileLogger opens (or creates) the log file in append mode
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if config.Path == "" {
		config.Path = DefaultLogFile
	}

	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &FileLogger{
		config: config,
		sink:   &fileSink{out: file, file: file, currentSize: info.Size()},
	}, nil
}

// NewStreamLogger writes log lines to w, e.g. os.Stderr. Closing it does not close w.
func NewStreamLogger(w io.Writer, format Format, level Level) *FileLogger {
	return &FileLogger{
		config: FileLoggerConfig{Format: format, Level: level},
		sink:   &fileSink{out: w},
	}
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ErrorLevel, msg, err, fields)
}

// WithFields returns a logger writing to the same file with additional fields
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{
		config: l.config,
		sink:   l.sink,
		fields: mergeFields(l.fields, fields),
	}
}

// Close syncs and closes the log file. Later writes are dropped.
func (l *FileLogger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	l.sink.closed = true
	l.sink.out = nil
	if l.sink.file == nil {
		return nil
	}
	l.sink.file.Sync()
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}

func (l *FileLogger) log(level Level, msg string, err error, fields Fields) {
	if level < l.config.Level {
		return
	}

	now := time.Now()
	allFields := mergeFields(l.fields, fields)

	var line []byte
	switch l.config.Format {
	case FormatJSON:
		var fmtErr error
		if line, fmtErr = formatJSON(now, level, msg, err, allFields); fmtErr != nil {
			return
		}
	case FormatText:
		line = formatText(now, level, msg, err, allFields)
	default:
		line = formatClassic(now, level, msg, err)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.closed || l.sink.out == nil {
		return
	}
	if l.sink.file != nil && l.config.MaxSize > 0 && l.sink.currentSize >= l.config.MaxSize {
		l.rotate()
		if l.sink.out == nil {
			return
		}
	}

	n, _ := l.sink.out.Write(line)
	l.sink.currentSize += int64(n)
}

// formatClassic writes the message only; fields are left to the structured formats
func formatClassic(now time.Time, level Level, msg string, err error) []byte {
	line := fmt.Sprintf("%s: %s: %s", levelString(level), now.Format(ClassicTimeLayout), msg)
	if err != nil {
		line += ": " + err.Error()
	}
	return []byte(line + "\n")
}

func formatJSON(now time.Time, level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := map[string]interface{}{
		"timestamp": now.UTC().Format(time.RFC3339),
		"level":     levelString(level),
		"message":   msg,
	}

	if err != nil {
		entry["error"] = err.Error()
	}

	for k, v := range fields {
		entry[k] = v
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}

	return append(data, '\n'), nil
}

func formatText(now time.Time, level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", now.UTC().Format("2006-01-02T15:04:05.000Z"), levelString(level), msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

// rotate shifts backups and reopens the log file (sink lock held)
func (l *FileLogger) rotate() {
	l.sink.file.Close()

	for i := l.config.MaxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", l.config.Path, i), fmt.Sprintf("%s.%d", l.config.Path, i+1))
	}

	if l.config.MaxBackups > 0 {
		os.Rename(l.config.Path, l.config.Path+".1")
		os.Remove(fmt.Sprintf("%s.%d", l.config.Path, l.config.MaxBackups+1))
	} else {
		os.Remove(l.config.Path)
	}

	file, err := os.OpenFile(l.config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		l.sink.file = nil
		l.sink.out = nil
		return
	}

	l.sink.file = file
	l.sink.out = file
	l.sink.currentSize = 0
}

func mergeFields(base, extra Fields) Fields {
	merged := make(Fields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// levelString returns the string representation of a log level
func levelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns level as string (exported version)
func LevelString(level Level) string {
	return levelString(level)
}
