package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/sdejongh/foldersync/pkg/compare"
	"github.com/sdejongh/foldersync/pkg/logging"
	"github.com/sdejongh/foldersync/pkg/models"
	"github.com/sdejongh/foldersync/pkg/output"
	"github.com/sdejongh/foldersync/pkg/storage"
)

// Messages written to the log and the console around each tick
const (
	MsgStarted   = "Synchronization has started"
	MsgCompleted = "Synchronization completed"
	MsgFailed    = "Synchronization failed"
	MsgStopping  = "Stopping synchronization process"
)

// RunnerConfig holds the settings of the tick loop
type RunnerConfig struct {
	SourceDir string
	DestDir   string

	// Interval is the pause between the end of a tick and the start of the next
	Interval time.Duration

	// FailOnCompareError stops the loop on the first comparison failure.
	// When false the failing tick is abandoned and retried like any other error.
	FailOnCompareError bool

	// Once runs a single tick and returns its error
	Once bool

	// Clock drives the interval timer; nil means the real clock
	Clock clockwork.Clock
}

// Runner calls the reconciler once per tick until its context is cancelled
type Runner struct {
	config     RunnerConfig
	backend    storage.Backend
	comparator compare.Comparator
	logger     logging.Logger
	formatter  output.Formatter
	options    []Option
	clock      clockwork.Clock
}

// NewRunner creates a tick loop. opts are applied to the reconciler of every tick.
func NewRunner(
	config RunnerConfig,
	backend storage.Backend,
	comparator compare.Comparator,
	logger logging.Logger,
	formatter output.Formatter,
	opts ...Option,
) *Runner {
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{
		config:     config,
		backend:    backend,
		comparator: comparator,
		logger:     logger,
		formatter:  formatter,
		options:    opts,
		clock:      clock,
	}
}

// Run loops until ctx is cancelled, which is a clean exit (nil error).
// It returns a *models.ConfigError when the source directory is missing,
// and a *models.ComparisonError when FailOnCompareError is set.
// Other tick errors are logged and the tick is retried after the interval.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return r.stop(ctx)
		}
		if err := r.checkSource(ctx); err != nil {
			r.logger.Error(ctx, err.Error(), nil, nil)
			r.printError(err.Error(), nil)
			return err
		}

		_, err := r.Tick(ctx)
		switch {
		case ctx.Err() != nil:
			return r.stop(ctx)
		case err != nil && r.config.Once:
			return err
		case err != nil && r.config.FailOnCompareError && isComparisonError(err):
			return err
		}

		if r.config.Once {
			return nil
		}

		select {
		case <-ctx.Done():
			return r.stop(ctx)
		case <-r.clock.After(r.config.Interval):
		}
	}
}

// Tick runs one synchronization pass and reports on it
func (r *Runner) Tick(ctx context.Context) (*models.TickReport, error) {
	report := &models.TickReport{
		ID:         uuid.NewString(),
		SourcePath: r.config.SourceDir,
		DestPath:   r.config.DestDir,
		StartTime:  time.Now(),
	}
	logger := r.logger.WithFields(logging.Fields{"tick_id": report.ID})

	logger.Info(ctx, MsgStarted, logging.Fields{
		"source": r.config.SourceDir,
		"dest":   r.config.DestDir,
	})
	r.printMessage(MsgStarted)

	recorder := &tickRecorder{
		ctx:       ctx,
		logger:    logger,
		formatter: r.formatter,
		stats:     &report.Stats,
	}
	opts := append([]Option{WithLogger(logger)}, r.options...)
	opts = append(opts, WithStatistics(&report.Stats))
	reconciler := NewReconciler(r.backend, r.comparator, recorder, opts...)

	err := reconciler.Sync(ctx, r.config.SourceDir, r.config.DestDir)
	switch {
	case err == nil:
		report.Finish(models.StatusSuccess, nil)
		logger.Info(ctx, MsgCompleted, logging.Fields{
			"changes":      report.Stats.Changes(),
			"unchanged":    report.Stats.FilesUnchanged.Load(),
			"bytes_copied": report.Stats.BytesCopied.Load(),
			"duration":     report.Duration.String(),
		})
		if r.formatter != nil {
			r.formatter.Complete(report)
		}
		return report, nil

	case ctx.Err() != nil:
		report.Finish(models.StatusCancelled, ctx.Err())
		return report, ctx.Err()

	default:
		report.Finish(models.StatusFailed, err)
		var cmpErr *models.ComparisonError
		if errors.As(err, &cmpErr) {
			logger.Error(ctx, fmt.Sprintf("Cannot compare '%s' and '%s'", cmpErr.PathA, cmpErr.PathB), cmpErr.Err, nil)
		}
		logger.Error(ctx, MsgFailed, err, nil)
		r.printError(MsgFailed, err)
		return report, fmt.Errorf("sync tick %s: %w", report.ID, err)
	}
}

func (r *Runner) checkSource(ctx context.Context) error {
	exists, err := r.backend.Exists(ctx, r.config.SourceDir)
	if err != nil {
		return &models.ConfigError{Path: r.config.SourceDir, Message: fmt.Sprintf("cannot access source directory (%v)", err)}
	}
	if !exists {
		return &models.ConfigError{Path: r.config.SourceDir, Message: "source directory does not exist"}
	}

	info, err := r.backend.Stat(ctx, r.config.SourceDir)
	if err != nil {
		return &models.ConfigError{Path: r.config.SourceDir, Message: fmt.Sprintf("cannot access source directory (%v)", err)}
	}
	if !info.IsDir {
		return &models.ConfigError{Path: r.config.SourceDir, Message: "source is not a directory"}
	}
	return nil
}

func (r *Runner) stop(ctx context.Context) error {
	r.logger.Info(context.WithoutCancel(ctx), MsgStopping, nil)
	r.printMessage(MsgStopping)
	return nil
}

func (r *Runner) printMessage(msg string) {
	if r.formatter != nil {
		r.formatter.Message(msg)
	}
}

func (r *Runner) printError(msg string, err error) {
	if r.formatter != nil {
		r.formatter.Error(msg, err)
	}
}

func isComparisonError(err error) bool {
	var cmpErr *models.ComparisonError
	return errors.As(err, &cmpErr)
}

// tickRecorder forwards change events to the log, the console and the tick statistics
type tickRecorder struct {
	ctx       context.Context
	logger    logging.Logger
	formatter output.Formatter
	stats     *models.Statistics
}

func (t *tickRecorder) Record(kind models.EntityKind, path string, op models.Operation) {
	event := models.ChangeEvent{Path: path, Kind: kind, Op: op}
	t.stats.Count(event)
	t.logger.Info(t.ctx, event.String(), logging.Fields{
		"kind": string(kind),
		"op":   string(op),
		"path": path,
	})
	if t.formatter != nil {
		t.formatter.Event(event)
	}
}
