package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sdejongh/foldersync/pkg/compare"
	"github.com/sdejongh/foldersync/pkg/config"
	"github.com/sdejongh/foldersync/pkg/logging"
	"github.com/sdejongh/foldersync/pkg/output"
	"github.com/sdejongh/foldersync/pkg/ratelimit"
	"github.com/sdejongh/foldersync/pkg/storage"
	"github.com/sdejongh/foldersync/pkg/sync"
)

// SyncFlags holds sync command flags
type SyncFlags struct {
	Source     string
	Dest       string
	IntervalMs int
	LogFile    string
	Once       bool
	Comparison string
	Bandwidth  string
	Exclude    []string
	MaxDepth   int
	Output     string
	// Continue with the next tick when two files cannot be compared
	ContinueOnCompareError bool
	// Logging flags
	LogFormat string
	LogLevel  string
}

var syncFlags SyncFlags

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror a source folder onto a destination folder",
		Long: `Periodically mirror the source directory onto the destination directory.
Files and folders missing from the destination are created, files whose
content differs are overwritten, and anything absent from the source is
removed from the destination. Runs until interrupted (Ctrl+C).`,
		RunE: runSync,
	}

	cmd.Flags().StringVarP(&syncFlags.Source, "source", "s", "", "source directory path (required unless set in config)")
	cmd.Flags().StringVarP(&syncFlags.Dest, "dest", "d", "", "destination directory path (required unless set in config)")
	cmd.Flags().IntVarP(&syncFlags.IntervalMs, "interval", "i", config.DefaultIntervalMs, "interval between synchronizations in milliseconds")
	cmd.Flags().StringVarP(&syncFlags.LogFile, "log", "l", config.DefaultLogFile, "log file path")
	cmd.Flags().BoolVar(&syncFlags.Once, "once", false, "run a single synchronization and exit")

	cmd.Flags().StringVar(&syncFlags.Comparison, "comparison", "md5", "content digest: md5, sha256")
	cmd.Flags().StringVarP(&syncFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().StringSliceVar(&syncFlags.Exclude, "exclude", []string{}, "gitignore-style patterns to exclude")
	cmd.Flags().IntVar(&syncFlags.MaxDepth, "max-depth", 0, "maximum directory depth (0 = unlimited)")
	cmd.Flags().BoolVar(&syncFlags.ContinueOnCompareError, "continue-on-compare-error", false, "retry on the next tick instead of exiting when files cannot be compared")
	cmd.Flags().StringVarP(&syncFlags.Output, "output", "o", "human", "output format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&syncFlags.LogFormat, "log-format", "classic", "log format: classic, text, json")
	cmd.Flags().StringVar(&syncFlags.LogLevel, "log-level", "debug", "log level: debug, info, warn, error")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return err
	}

	source, dest, err := validateSyncConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	backend, err := storage.NewLocal()
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	defer backend.Close()

	limiter := ratelimit.NewLimiter(cfg.Performance.BandwidthLimit)
	comparator, err := newComparator(cfg, limiter)
	if err != nil {
		return err
	}

	formatter, err := output.New(cfg.Output.Format, cfg.Output.Quiet)
	if err != nil {
		return err
	}
	if err := formatter.Start(os.Stdout); err != nil {
		return fmt.Errorf("failed to start output: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !syncFlags.Once && formatter.Name() == "human" && !cfg.Output.Quiet && term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println("Press Ctrl+C to exit the application.")
	}

	runner := sync.NewRunner(
		sync.RunnerConfig{
			SourceDir:          source,
			DestDir:            dest,
			Interval:           time.Duration(cfg.Sync.IntervalMs) * time.Millisecond,
			FailOnCompareError: cfg.Sync.FailOnCompareError,
			Once:               syncFlags.Once,
		},
		backend,
		comparator,
		logger,
		formatter,
		sync.WithExclude(cfg.Exclude),
		sync.WithLimiter(limiter),
		sync.WithMaxDepth(cfg.Sync.MaxDepth),
	)

	return runner.Run(ctx)
}

// newComparator builds the configured comparator. Digest reads share the
// copy limiter, so comparisons count against the same bandwidth budget.
func newComparator(cfg *config.Config, limiter *ratelimit.Limiter) (compare.Comparator, error) {
	comparator, err := compare.New(cfg.Sync.Comparison, cfg.Performance.BufferSize)
	if err != nil {
		return nil, err
	}
	if hc, ok := comparator.(*compare.HashComparator); ok && limiter != nil {
		hc.SetReaderWrapper(func(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
			return ratelimit.NewReadCloser(ctx, rc, limiter)
		})
	}
	return comparator, nil
}

// createLogger opens the log file described by cfg
func createLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	logger, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     logging.ParseFormat(cfg.Format),
		Level:      logging.ParseLevel(cfg.Level),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	// Verbose runs also echo log lines to stderr
	if globalFlags.Verbose {
		return logging.Tee(logger, logging.NewStreamLogger(os.Stderr, logging.FormatText, logging.DebugLevel)), nil
	}
	return logger, nil
}
