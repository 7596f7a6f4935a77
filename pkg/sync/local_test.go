package sync

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/foldersync/pkg/compare"
	"github.com/sdejongh/foldersync/pkg/models"
	"github.com/sdejongh/foldersync/pkg/storage"
)

// LocalHelper runs the reconciler against real directories
type LocalHelper struct {
	t         *testing.T
	tempDir   string
	sourceDir string
	destDir   string
	backend   *storage.Billy
}

func NewLocalHelper(t *testing.T) *LocalHelper {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "foldersync-local-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	sourceDir := filepath.Join(tempDir, "source")
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		t.Fatalf("failed to create source dir: %v", err)
	}

	backend, err := storage.NewLocal()
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	return &LocalHelper{
		t:         t,
		tempDir:   tempDir,
		sourceDir: sourceDir,
		destDir:   filepath.Join(tempDir, "dest"),
		backend:   backend,
	}
}

func (h *LocalHelper) Cleanup() {
	os.RemoveAll(h.tempDir)
}

func (h *LocalHelper) CreateFile(root, name string, content []byte) {
	h.t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to create file: %v", err)
	}
}

func (h *LocalHelper) Sync(log *EventLog) error {
	r := NewReconciler(h.backend, compare.NewMD5Comparator(4096), log)
	return r.Sync(context.Background(), h.sourceDir, h.destDir)
}

func TestLocalSync_CopyNewFiles(t *testing.T) {
	h := NewLocalHelper(t)
	defer h.Cleanup()

	h.CreateFile(h.sourceDir, "file1.txt", []byte("content1"))
	h.CreateFile(h.sourceDir, "file2.txt", []byte("content2"))
	h.CreateFile(h.sourceDir, "subdir/file3.txt", []byte("content3"))

	log := &EventLog{}
	if err := h.Sync(log); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	for name, want := range map[string]string{
		"file1.txt":        "content1",
		"file2.txt":        "content2",
		"subdir/file3.txt": "content3",
	} {
		got, err := os.ReadFile(filepath.Join(h.destDir, name))
		if err != nil {
			t.Errorf("file %s should exist in destination: %v", name, err)
			continue
		}
		if !bytes.Equal(got, []byte(want)) {
			t.Errorf("%s content = %s, want %s", name, got, want)
		}
	}

	// dest, file1, file2, subdir, subdir/file3
	if got := len(log.Events()); got != 5 {
		t.Errorf("events = %d, want 5: %v", got, log.Events())
	}
}

func TestLocalSync_UpdateAndDelete(t *testing.T) {
	h := NewLocalHelper(t)
	defer h.Cleanup()

	h.CreateFile(h.sourceDir, "file.txt", []byte("new content"))
	h.CreateFile(h.destDir, "file.txt", []byte("old content"))
	h.CreateFile(h.destDir, "orphan/nested/file.txt", []byte("orphan"))

	log := &EventLog{}
	if err := h.Sync(log); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(h.destDir, "file.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "new content" {
		t.Errorf("file.txt content = %s, want 'new content'", content)
	}
	if _, err := os.Stat(filepath.Join(h.destDir, "orphan")); !os.IsNotExist(err) {
		t.Errorf("orphan directory should have been removed, stat err = %v", err)
	}

	want := []models.ChangeEvent{
		{Path: filepath.Join(h.destDir, "orphan", "nested", "file.txt"), Kind: models.KindFile, Op: models.OpRemoved},
		{Path: filepath.Join(h.destDir, "orphan", "nested"), Kind: models.KindDirectory, Op: models.OpRemoved},
		{Path: filepath.Join(h.destDir, "orphan"), Kind: models.KindDirectory, Op: models.OpRemoved},
		{Path: filepath.Join(h.destDir, "file.txt"), Kind: models.KindFile, Op: models.OpCopied},
	}
	got := log.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLocalSync_SkipIdenticalFiles(t *testing.T) {
	h := NewLocalHelper(t)
	defer h.Cleanup()

	h.CreateFile(h.sourceDir, "file.txt", []byte("identical content"))
	h.CreateFile(h.destDir, "file.txt", []byte("identical content"))

	log := &EventLog{}
	if err := h.Sync(log); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if got := log.Events(); len(got) != 0 {
		t.Errorf("identical trees should produce no events, got %v", got)
	}
}

func TestLocalSync_SymlinkedFile(t *testing.T) {
	h := NewLocalHelper(t)
	defer h.Cleanup()

	target := filepath.Join(h.tempDir, "target.txt")
	if err := os.WriteFile(target, []byte("through the link"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Symlink(target, filepath.Join(h.sourceDir, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := h.Sync(&EventLog{}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(h.destDir, "link.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "through the link" {
		t.Errorf("link.txt content = %s", content)
	}
}

func TestLocalSync_PruneSymlinkedDirectory(t *testing.T) {
	h := NewLocalHelper(t)
	defer h.Cleanup()

	outside := filepath.Join(h.tempDir, "outside")
	h.CreateFile(outside, "precious.txt", []byte("keep me"))
	if err := os.MkdirAll(h.destDir, 0755); err != nil {
		t.Fatalf("failed to create dest dir: %v", err)
	}
	link := filepath.Join(h.destDir, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	log := &EventLog{}
	if err := h.Sync(log); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if content, err := os.ReadFile(filepath.Join(outside, "precious.txt")); err != nil || string(content) != "keep me" {
		t.Errorf("link target should be untouched, got %q, %v", content, err)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Errorf("link should be removed from destination, Lstat error = %v", err)
	}

	want := []models.ChangeEvent{event(models.KindDirectory, link, models.OpRemoved)}
	if got := log.Events(); len(got) != 1 || got[0] != want[0] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestLocalSync_ReplaceSymlinkedDirectory(t *testing.T) {
	h := NewLocalHelper(t)
	defer h.Cleanup()

	outside := filepath.Join(h.tempDir, "outside")
	h.CreateFile(outside, "a.txt", []byte("keep me"))
	h.CreateFile(h.sourceDir, "shared/a.txt", []byte("from source"))
	if err := os.MkdirAll(h.destDir, 0755); err != nil {
		t.Fatalf("failed to create dest dir: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(h.destDir, "shared")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if err := h.Sync(&EventLog{}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if content, err := os.ReadFile(filepath.Join(outside, "a.txt")); err != nil || string(content) != "keep me" {
		t.Errorf("link target should not be written through, got %q, %v", content, err)
	}
	info, err := os.Lstat(filepath.Join(h.destDir, "shared"))
	if err != nil {
		t.Fatalf("Lstat() error = %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
		t.Errorf("shared should be a real directory, mode = %s", info.Mode())
	}
	if content, err := os.ReadFile(filepath.Join(h.destDir, "shared", "a.txt")); err != nil || string(content) != "from source" {
		t.Errorf("shared/a.txt = %q, %v", content, err)
	}
}
