package models

import (
	"sync/atomic"
	"time"
)

// TickReport summarizes a single synchronization pass
type TickReport struct {
	// Tick details
	ID         string
	SourcePath string
	DestPath   string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Error that ended the tick, if any
	Err error

	// Overall status
	Status TickStatus
}

// Statistics holds counters for one tick
type Statistics struct {
	FilesCreated   atomic.Int32
	FilesCopied    atomic.Int32
	FilesRemoved   atomic.Int32
	FilesUnchanged atomic.Int32
	DirsCreated    atomic.Int32
	DirsRemoved    atomic.Int32

	// Data transfer
	BytesCopied atomic.Int64
}

// Changes returns the number of mutations applied during the tick
func (s *Statistics) Changes() int {
	return int(s.FilesCreated.Load() + s.FilesCopied.Load() + s.FilesRemoved.Load() +
		s.DirsCreated.Load() + s.DirsRemoved.Load())
}

// Count increments the counter matching a change event
func (s *Statistics) Count(e ChangeEvent) {
	switch {
	case e.Kind == KindDirectory && e.Op == OpCreated:
		s.DirsCreated.Add(1)
	case e.Kind == KindDirectory && e.Op == OpRemoved:
		s.DirsRemoved.Add(1)
	case e.Op == OpCreated:
		s.FilesCreated.Add(1)
	case e.Op == OpCopied:
		s.FilesCopied.Add(1)
	case e.Op == OpRemoved:
		s.FilesRemoved.Add(1)
	}
}

// TickStatus represents the overall result of a tick
type TickStatus string

const (
	// StatusSuccess indicates the destination converged
	StatusSuccess TickStatus = "success"
	// StatusFailed indicates the tick was abandoned after an error
	StatusFailed TickStatus = "failed"
	// StatusCancelled indicates the tick was interrupted
	StatusCancelled TickStatus = "cancelled"
)

// Finish stamps the end time and status of the report
func (r *TickReport) Finish(status TickStatus, err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Status = status
	r.Err = err
}
