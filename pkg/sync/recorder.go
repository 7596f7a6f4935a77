package sync

import (
	gosync "sync"

	"github.com/sdejongh/foldersync/pkg/models"
)

// Recorder receives one call per mutation applied to the destination,
// synchronously and in the order the mutations happen
type Recorder interface {
	Record(kind models.EntityKind, path string, op models.Operation)
}

// RecorderFunc adapts a function to the Recorder interface
type RecorderFunc func(kind models.EntityKind, path string, op models.Operation)

// Record calls f
func (f RecorderFunc) Record(kind models.EntityKind, path string, op models.Operation) {
	f(kind, path, op)
}

// EventLog is a Recorder that keeps every event in memory
type EventLog struct {
	mu     gosync.Mutex
	events []models.ChangeEvent
}

// Record appends the event
func (l *EventLog) Record(kind models.EntityKind, path string, op models.Operation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, models.ChangeEvent{Path: path, Kind: kind, Op: op})
}

// Events returns a copy of the recorded events
func (l *EventLog) Events() []models.ChangeEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ChangeEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Reset drops all recorded events
func (l *EventLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}
