package sync

import (
	"path"
)

// SyncTask is the directory pair reconciled at one recursion level.
// It lives on the stack of a single Sync call and is never shared.
type SyncTask struct {
	// SourceDir and DestDir are backend paths of the pair
	SourceDir string
	DestDir   string

	// RelativePath is the slash-separated path below the sync root ("" at the root)
	RelativePath string

	// Depth is 0 at the root and grows by one per subdirectory
	Depth int
}

// NewSyncTask creates the root task for a sync pass
func NewSyncTask(sourceDir, destDir string) *SyncTask {
	return &SyncTask{
		SourceDir: sourceDir,
		DestDir:   destDir,
	}
}

// Child returns the task for the entry called name inside this pair
func (t *SyncTask) Child(join func(elem ...string) string, name string) *SyncTask {
	return &SyncTask{
		SourceDir:    join(t.SourceDir, name),
		DestDir:      join(t.DestDir, name),
		RelativePath: path.Join(t.RelativePath, name),
		Depth:        t.Depth + 1,
	}
}
