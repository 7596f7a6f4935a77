package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/foldersync/pkg/models"
)

// newLocalFixture creates a temp directory tree and a host backend
func newLocalFixture(t *testing.T, files map[string]string) (string, *Billy) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "foldersync-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	local, err := NewLocal()
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	t.Cleanup(func() { local.Close() })

	return tempDir, local
}

// TestLocalList tests the List method against the host filesystem
func TestLocalList(t *testing.T) {
	tempDir, local := newLocalFixture(t, map[string]string{
		"file1.txt":        "content1",
		"file2.txt":        "content2",
		"subdir/file3.txt": "content3",
	})
	ctx := context.Background()

	t.Run("OneLevelOnly", func(t *testing.T) {
		listing, err := local.List(ctx, tempDir)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(listing) != 3 {
			t.Fatalf("List() returned %d entries, want 3: %v", len(listing), listing)
		}
		if listing["file1.txt"] != models.KindFile {
			t.Errorf("file1.txt kind = %s, want file", listing["file1.txt"])
		}
		if listing["subdir"] != models.KindDirectory {
			t.Errorf("subdir kind = %s, want directory", listing["subdir"])
		}
		if listing.Has("file3.txt") {
			t.Error("List() should not descend into subdirectories")
		}
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		if _, err := local.List(ctx, filepath.Join(tempDir, "nope")); err == nil {
			t.Error("List() should fail for a missing directory")
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := local.List(cctx, tempDir); err == nil {
			t.Error("List() should fail with a cancelled context")
		}
	})

	t.Run("SymlinkToDirectory", func(t *testing.T) {
		link := filepath.Join(tempDir, "link")
		if err := os.Symlink(filepath.Join(tempDir, "subdir"), link); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
		defer os.Remove(link)

		listing, err := local.List(ctx, tempDir)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if listing["link"] != models.KindDirectory {
			t.Errorf("link kind = %s, want directory", listing["link"])
		}

		info, err := local.Lstat(ctx, link)
		if err != nil {
			t.Fatalf("Lstat() error = %v", err)
		}
		if !info.IsLink {
			t.Error("Lstat() should report the entry as a link")
		}
		if info, err := local.Lstat(ctx, filepath.Join(tempDir, "subdir")); err != nil || info.IsLink || !info.IsDir {
			t.Errorf("Lstat(subdir) = %+v, %v, want a plain directory", info, err)
		}
		if info, err := local.Stat(ctx, link); err != nil || info.IsLink {
			t.Errorf("Stat() = %+v, %v, IsLink is only set by Lstat", info, err)
		}
	})
}

// TestLocalReadWrite tests Read and Write round trips on disk
func TestLocalReadWrite(t *testing.T) {
	tempDir, local := newLocalFixture(t, map[string]string{"existing.txt": "a much longer original body"})
	ctx := context.Background()

	t.Run("WriteNew", func(t *testing.T) {
		path := filepath.Join(tempDir, "new.txt")
		n, err := local.Write(ctx, path, strings.NewReader("hello"))
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != 5 {
			t.Errorf("Write() wrote %d bytes, want 5", n)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "hello" {
			t.Errorf("content = %q, want hello", data)
		}
	})

	t.Run("WriteTruncates", func(t *testing.T) {
		path := filepath.Join(tempDir, "existing.txt")
		if _, err := local.Write(ctx, path, strings.NewReader("short")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "short" {
			t.Errorf("content = %q, want short", data)
		}
	})

	t.Run("Read", func(t *testing.T) {
		reader, err := local.Read(ctx, filepath.Join(tempDir, "new.txt"))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		defer reader.Close()
		data, _ := io.ReadAll(reader)
		if !bytes.Equal(data, []byte("hello")) {
			t.Errorf("Read() content = %q, want hello", data)
		}
	})

	t.Run("ReadMissing", func(t *testing.T) {
		if _, err := local.Read(ctx, filepath.Join(tempDir, "missing.txt")); err == nil {
			t.Error("Read() should fail for a missing file")
		}
	})
}

// TestLocalMkdirRemove tests directory creation and single-entity removal
func TestLocalMkdirRemove(t *testing.T) {
	tempDir, local := newLocalFixture(t, map[string]string{"full/inner.txt": "x"})
	ctx := context.Background()

	dir := filepath.Join(tempDir, "a", "b")
	if err := local.Mkdir(ctx, dir); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	info, err := local.Stat(ctx, dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir || info.Kind() != models.KindDirectory {
		t.Error("Stat() should report a directory")
	}

	if err := local.Remove(ctx, dir); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	exists, err := local.Exists(ctx, dir)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("directory should be gone after Remove()")
	}

	if err := local.Remove(ctx, filepath.Join(tempDir, "full")); err == nil {
		t.Error("Remove() should refuse a non-empty directory")
	}
}

// TestMemoryBackend exercises the in-memory backend used by the sync tests
func TestMemoryBackend(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	if err := mem.Mkdir(ctx, "/root/sub"); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if _, err := mem.Write(ctx, mem.Join("/root", "a.txt"), strings.NewReader("abc")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	listing, err := mem.List(ctx, "/root")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if listing["a.txt"] != models.KindFile || listing["sub"] != models.KindDirectory {
		t.Errorf("List() = %v", listing)
	}

	info, err := mem.Stat(ctx, "/root/a.txt")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size != 3 {
		t.Errorf("Size = %d, want 3", info.Size)
	}

	exists, err := mem.Exists(ctx, "/root/nope")
	if err != nil || exists {
		t.Errorf("Exists(missing) = %v, %v", exists, err)
	}

	if mem.Filesystem() == nil {
		t.Error("Filesystem() returned nil")
	}
}
