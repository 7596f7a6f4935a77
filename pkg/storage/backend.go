package storage

import (
	"context"
	"io"
	"time"

	"github.com/sdejongh/foldersync/pkg/models"
)

// FileInfo represents metadata about a file or directory
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	// IsLink is only set by Lstat
	IsLink bool
}

// Kind returns the entity kind of the described entry
func (fi *FileInfo) Kind() models.EntityKind {
	if fi.IsDir {
		return models.KindDirectory
	}
	return models.KindFile
}

// Backend defines the filesystem operations the reconciler needs.
// Every method works on a single entity; nothing is recursive.
type Backend interface {
	// List returns the entries directly inside the directory at path
	List(ctx context.Context, path string) (models.DirectoryListing, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or truncates a file and fills it from reader
	Write(ctx context.Context, path string, reader io.Reader) (int64, error)

	// Remove deletes a file or an empty directory
	Remove(ctx context.Context, path string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata, following symbolic links
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Lstat returns file metadata without following a final symbolic link
	Lstat(ctx context.Context, path string) (*FileInfo, error)

	// Mkdir creates a directory, including missing parents
	Mkdir(ctx context.Context, path string) error

	// Join joins path elements using the backend's separator
	Join(elem ...string) string

	// Close releases any resources held by the backend
	Close() error
}
