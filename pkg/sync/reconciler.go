package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/sdejongh/foldersync/pkg/compare"
	"github.com/sdejongh/foldersync/pkg/logging"
	"github.com/sdejongh/foldersync/pkg/models"
	"github.com/sdejongh/foldersync/pkg/ratelimit"
	"github.com/sdejongh/foldersync/pkg/storage"
)

// Reconciler makes a destination tree mirror a source tree.
// A Sync pass is single-threaded and depth-first: at every level the
// destination is pruned before source entries are created or updated.
type Reconciler struct {
	backend    storage.Backend
	comparator compare.Comparator
	recorder   Recorder
	logger     logging.Logger
	excluder   *Excluder
	limiter    *ratelimit.Limiter
	stats      *models.Statistics
	maxDepth   int
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithExclude skips entries matching the gitignore-style patterns on both sides
func WithExclude(patterns []string) Option {
	return func(r *Reconciler) {
		r.excluder = NewExcluder(patterns)
	}
}

// WithLimiter throttles file copies
func WithLimiter(limiter *ratelimit.Limiter) Option {
	return func(r *Reconciler) {
		r.limiter = limiter
	}
}

// WithMaxDepth bounds the recursion depth (0 means unlimited)
func WithMaxDepth(depth int) Option {
	return func(r *Reconciler) {
		r.maxDepth = depth
	}
}

// WithLogger sets the logger used for debug traces
func WithLogger(logger logging.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithStatistics collects unchanged-file and byte counters into stats
func WithStatistics(stats *models.Statistics) Option {
	return func(r *Reconciler) {
		r.stats = stats
	}
}

// NewReconciler creates a reconciler working on backend
func NewReconciler(backend storage.Backend, comparator compare.Comparator, recorder Recorder, opts ...Option) *Reconciler {
	r := &Reconciler{
		backend:    backend,
		comparator: comparator,
		recorder:   recorder,
		logger:     logging.NewNullLogger(),
		stats:      &models.Statistics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.recorder == nil {
		r.recorder = RecorderFunc(func(models.EntityKind, string, models.Operation) {})
	}
	return r
}

// Sync mirrors sourceDir onto destDir. Mutations are applied immediately
// and reported to the recorder as they complete; on error the destination
// is left partially converged.
//
// A *models.ComparisonError is returned when two files cannot be digested.
// A cancelled ctx stops the pass before the next entry and returns ctx.Err().
func (r *Reconciler) Sync(ctx context.Context, sourceDir, destDir string) error {
	return r.syncTask(ctx, NewSyncTask(sourceDir, destDir))
}

func (r *Reconciler) syncTask(ctx context.Context, task *SyncTask) error {
	if r.maxDepth > 0 && task.Depth > r.maxDepth {
		return fmt.Errorf("maximum depth %d exceeded at %s", r.maxDepth, task.SourceDir)
	}

	if err := r.ensureDir(ctx, task.DestDir); err != nil {
		return err
	}

	source, err := r.backend.List(ctx, task.SourceDir)
	if err != nil {
		return err
	}
	dest, err := r.backend.List(ctx, task.DestDir)
	if err != nil {
		return err
	}

	// Prune
	for _, name := range dest.Names() {
		if err := ctx.Err(); err != nil {
			return err
		}
		kind := dest[name]
		if r.excluded(joinRelative(task.RelativePath, name), source, dest, name) {
			continue
		}
		path := r.backend.Join(task.DestDir, name)
		linked, err := r.isLink(ctx, path)
		if err != nil {
			return err
		}
		// Links in the destination are replaced, never written through
		if srcKind, ok := source[name]; ok && srcKind == kind && !linked {
			continue
		}
		if err := r.removeEntry(ctx, path, kind); err != nil {
			return err
		}
		delete(dest, name)
	}

	// Create or update
	for _, name := range source.Names() {
		if err := ctx.Err(); err != nil {
			return err
		}
		kind := source[name]
		child := task.Child(r.backend.Join, name)
		if r.excluded(child.RelativePath, source, dest, name) {
			continue
		}

		if kind == models.KindDirectory {
			if err := r.syncTask(ctx, child); err != nil {
				return err
			}
			continue
		}

		if !dest.Has(name) {
			if err := r.copyFile(ctx, child.SourceDir, child.DestDir); err != nil {
				return err
			}
			r.recorder.Record(models.KindFile, child.DestDir, models.OpCreated)
			continue
		}

		equal, err := r.comparator.Equal(ctx, r.backend, child.SourceDir, child.DestDir)
		if err != nil {
			return err
		}
		if equal {
			r.stats.FilesUnchanged.Add(1)
			continue
		}
		if err := r.copyFile(ctx, child.SourceDir, child.DestDir); err != nil {
			return err
		}
		r.recorder.Record(models.KindFile, child.DestDir, models.OpCopied)
	}

	return nil
}

// ensureDir makes sure path is a directory, replacing a file found in its place
func (r *Reconciler) ensureDir(ctx context.Context, path string) error {
	info, err := r.backend.Stat(ctx, path)
	switch {
	case err == nil && info.IsDir:
		return nil
	case err == nil:
		if err := r.backend.Remove(ctx, path); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", path, err)
		}
		r.recorder.Record(models.KindFile, path, models.OpRemoved)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := r.backend.Mkdir(ctx, path); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	r.recorder.Record(models.KindDirectory, path, models.OpCreated)
	return nil
}

// removeEntry deletes path, emptying directories bottom-up so every removed
// entity gets its own event. A link is removed as is, its target untouched.
func (r *Reconciler) removeEntry(ctx context.Context, path string, kind models.EntityKind) error {
	if kind == models.KindDirectory {
		linked, err := r.isLink(ctx, path)
		if err != nil {
			return err
		}
		if !linked {
			children, err := r.backend.List(ctx, path)
			if err != nil {
				return err
			}
			for _, name := range children.Names() {
				if err := r.removeEntry(ctx, r.backend.Join(path, name), children[name]); err != nil {
					return err
				}
			}
		}
	}

	if err := r.backend.Remove(ctx, path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	r.recorder.Record(kind, path, models.OpRemoved)
	return nil
}

func (r *Reconciler) isLink(ctx context.Context, path string) (bool, error) {
	info, err := r.backend.Lstat(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to lstat %s: %w", path, err)
	}
	return info.IsLink, nil
}

// excluded reports whether name matches an exclude pattern as it appears
// on either side, so a name skipped by one phase is skipped by both
func (r *Reconciler) excluded(rel string, source, dest models.DirectoryListing, name string) bool {
	if kind, ok := source[name]; ok && r.excluder.Match(rel, kind) {
		return true
	}
	if kind, ok := dest[name]; ok && r.excluder.Match(rel, kind) {
		return true
	}
	return false
}

func joinRelative(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
