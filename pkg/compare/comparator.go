package compare

import (
	"context"
	"fmt"
	"io"

	"github.com/sdejongh/foldersync/pkg/models"
	"github.com/sdejongh/foldersync/pkg/storage"
)

// ReaderWrapper decorates a reader opened for comparison, e.g. to throttle it
type ReaderWrapper func(ctx context.Context, rc io.ReadCloser) io.ReadCloser

// Comparator decides whether two files hold the same content
type Comparator interface {
	// Equal reports whether the files at pathA and pathB are identical.
	// A file that cannot be opened or read yields a *models.ComparisonError.
	Equal(ctx context.Context, backend storage.Backend, pathA, pathB string) (bool, error)

	// Name returns the name of the comparison method
	Name() string
}

// New returns the comparator for a configured method
func New(method models.ComparisonMethod, bufferSize int) (Comparator, error) {
	switch method {
	case models.CompareMD5, "":
		return NewMD5Comparator(bufferSize), nil
	case models.CompareSHA256:
		return NewSHA256Comparator(bufferSize), nil
	default:
		return nil, fmt.Errorf("unsupported comparison method: %s (use: md5, sha256)", method)
	}
}
