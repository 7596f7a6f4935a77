package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/sdejongh/foldersync/pkg/models"
)

const dirPerm = 0o755

// Billy is a storage backend on top of a go-billy filesystem
type Billy struct {
	fs billy.Filesystem
}

// NewBilly wraps an existing go-billy filesystem
func NewBilly(filesystem billy.Filesystem) *Billy {
	return &Billy{fs: filesystem}
}

// NewLocal creates a backend for the host filesystem. It is rooted at the
// volume of the working directory, so callers pass absolute paths.
func NewLocal() (*Billy, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	root := filepath.VolumeName(wd) + string(filepath.Separator)
	return NewBilly(osfs.New(root)), nil
}

// NewMemory creates an in-memory backend
func NewMemory() *Billy {
	return NewBilly(memfs.New())
}

// Filesystem exposes the underlying go-billy filesystem
func (b *Billy) Filesystem() billy.Filesystem {
	return b.fs
}

// List returns the entries directly inside the directory at path
func (b *Billy) List(ctx context.Context, path string) (models.DirectoryListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := b.fs.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	listing := make(models.DirectoryListing, len(infos))
	for _, info := range infos {
		isDir := info.IsDir()
		if info.Mode()&fs.ModeSymlink != 0 {
			// Symbolic links are mirrored as what they point to
			target, err := b.fs.Stat(b.fs.Join(path, info.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to resolve link %s: %w", b.fs.Join(path, info.Name()), err)
			}
			isDir = target.IsDir()
		}
		if isDir {
			listing[info.Name()] = models.KindDirectory
		} else {
			listing[info.Name()] = models.KindFile
		}
	}

	return listing, nil
}

// Read opens a file for reading
func (b *Billy) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := b.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Write creates or truncates a file and fills it from reader
func (b *Billy) Write(ctx context.Context, path string, reader io.Reader) (int64, error) {
	file, err := b.fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, reader)
	if err != nil {
		file.Close()
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}

	return written, nil
}

// Remove deletes a file or an empty directory
func (b *Billy) Remove(ctx context.Context, path string) error {
	if err := b.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Exists checks if a file or directory exists
func (b *Billy) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Stat returns file metadata
func (b *Billy) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// Lstat returns file metadata, describing a symbolic link itself
func (b *Billy) Lstat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := b.fs.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat file: %w", err)
	}

	return &FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
		IsLink:  info.Mode()&fs.ModeSymlink != 0,
	}, nil
}

// Mkdir creates a directory, including missing parents
func (b *Billy) Mkdir(ctx context.Context, path string) error {
	if err := b.fs.MkdirAll(path, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Join joins path elements
func (b *Billy) Join(elem ...string) string {
	return b.fs.Join(elem...)
}

// Close releases resources (no-op for go-billy filesystems)
func (b *Billy) Close() error {
	return nil
}
