package sync

import (
	"context"
	"fmt"

	"github.com/sdejongh/foldersync/pkg/logging"
	"github.com/sdejongh/foldersync/pkg/ratelimit"
)

// copyFile copies the bytes of src over dst, creating or truncating dst.
// File metadata is not carried over.
func (r *Reconciler) copyFile(ctx context.Context, src, dst string) error {
	reader, err := r.backend.Read(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	defer reader.Close()

	written, err := r.backend.Write(ctx, dst, ratelimit.NewReader(ctx, reader, r.limiter))
	if err != nil {
		return fmt.Errorf("failed to write destination file: %w", err)
	}

	r.stats.BytesCopied.Add(written)
	r.logger.Debug(ctx, "Copied file", logging.Fields{
		"source": src,
		"dest":   dst,
		"bytes":  written,
	})
	return nil
}
