package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/foldersync/internal/platform"
	"github.com/sdejongh/foldersync/pkg/compare"
	"github.com/sdejongh/foldersync/pkg/models"
	"github.com/sdejongh/foldersync/pkg/storage"
)

// ErrFilesDiffer is returned by the compare command when the digests differ
var ErrFilesDiffer = errors.New("files differ")

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "compare FILE_A FILE_B",
		Short: "Compare two files by content digest",
		Long: `Digest two files the same way sync does and report whether they are identical.
Exits with a non-zero status when the files differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runCompare(ctx, cmd, models.ComparisonMethod(method), args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&method, "comparison", "md5", "content digest: md5, sha256")

	return cmd
}

func runCompare(ctx context.Context, cmd *cobra.Command, method models.ComparisonMethod, fileA, fileB string) error {
	pathA, err := platform.NormalizePath(fileA)
	if err != nil {
		return err
	}
	pathB, err := platform.NormalizePath(fileB)
	if err != nil {
		return err
	}

	comparator, err := compare.New(method, 0)
	if err != nil {
		return err
	}

	backend, err := storage.NewLocal()
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	defer backend.Close()

	out := cmd.OutOrStdout()

	var equal bool
	if hasher, ok := comparator.(*compare.HashComparator); ok {
		digests := make([]string, 0, 2)
		for _, path := range []string{pathA, pathB} {
			digest, err := hasher.Digest(ctx, backend, path)
			if err != nil {
				return &models.ComparisonError{PathA: pathA, PathB: pathB, Err: err}
			}
			fmt.Fprintf(out, "%s  %s\n", digest, path)
			digests = append(digests, digest)
		}
		equal = digests[0] == digests[1]
	} else {
		equal, err = comparator.Equal(ctx, backend, pathA, pathB)
		if err != nil {
			return err
		}
	}

	if !equal {
		return ErrFilesDiffer
	}

	fmt.Fprintln(out, "identical")
	return nil
}
