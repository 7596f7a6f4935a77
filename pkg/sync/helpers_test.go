package sync

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdejongh/foldersync/pkg/compare"
	"github.com/sdejongh/foldersync/pkg/models"
	"github.com/sdejongh/foldersync/pkg/storage"
)

// TestHelper provides an in-memory source/destination pair for sync tests
type TestHelper struct {
	t       *testing.T
	backend *storage.Billy
}

// NewTestHelper creates a helper backed by an in-memory filesystem
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	return &TestHelper{t: t, backend: storage.NewMemory()}
}

func (h *TestHelper) WriteFile(path, content string) {
	h.t.Helper()
	_, err := h.backend.Write(context.Background(), path, strings.NewReader(content))
	require.NoError(h.t, err)
}

func (h *TestHelper) Mkdir(path string) {
	h.t.Helper()
	require.NoError(h.t, h.backend.Mkdir(context.Background(), path))
}

func (h *TestHelper) ReadFile(path string) string {
	h.t.Helper()
	reader, err := h.backend.Read(context.Background(), path)
	require.NoError(h.t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(h.t, err)
	return string(data)
}

func (h *TestHelper) Exists(path string) bool {
	h.t.Helper()
	ok, err := h.backend.Exists(context.Background(), path)
	require.NoError(h.t, err)
	return ok
}

// Tree returns every entry below root as relative path -> kind
func (h *TestHelper) Tree(root string) map[string]models.EntityKind {
	h.t.Helper()
	tree := make(map[string]models.EntityKind)
	h.walk(root, "", tree)
	return tree
}

func (h *TestHelper) walk(dir, rel string, tree map[string]models.EntityKind) {
	listing, err := h.backend.List(context.Background(), dir)
	require.NoError(h.t, err)
	for _, name := range listing.Names() {
		childRel := joinRelative(rel, name)
		tree[childRel] = listing[name]
		if listing[name] == models.KindDirectory {
			h.walk(h.backend.Join(dir, name), childRel, tree)
		}
	}
}

// Reconciler builds an MD5 reconciler recording into log
func (h *TestHelper) Reconciler(log *EventLog, opts ...Option) *Reconciler {
	return NewReconciler(h.backend, compare.NewMD5Comparator(0), log, opts...)
}

func event(kind models.EntityKind, path string, op models.Operation) models.ChangeEvent {
	return models.ChangeEvent{Path: path, Kind: kind, Op: op}
}

// faultyBackend fails every read of the paths listed in unreadable
type faultyBackend struct {
	storage.Backend
	unreadable map[string]bool
}

var errPermission = errors.New("permission denied")

func (b *faultyBackend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if b.unreadable[path] {
		return nil, errPermission
	}
	return b.Backend.Read(ctx, path)
}
