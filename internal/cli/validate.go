package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sdejongh/foldersync/internal/platform"
	"github.com/sdejongh/foldersync/pkg/config"
	"github.com/sdejongh/foldersync/pkg/models"
)

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the flags set on the command line.
// Flags left at their defaults do not override values from the config file.
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("source") {
		cfg.Sync.Source = syncFlags.Source
	}
	if flags.Changed("dest") {
		cfg.Sync.Dest = syncFlags.Dest
	}
	if flags.Changed("interval") {
		cfg.Sync.IntervalMs = syncFlags.IntervalMs
	}
	if flags.Changed("comparison") {
		cfg.Sync.Comparison = models.ComparisonMethod(syncFlags.Comparison)
	}
	if flags.Changed("max-depth") {
		cfg.Sync.MaxDepth = syncFlags.MaxDepth
	}
	if flags.Changed("continue-on-compare-error") {
		cfg.Sync.FailOnCompareError = !syncFlags.ContinueOnCompareError
	}

	// Bandwidth limit, e.g. "10M" or "512KiB" per second
	if flags.Changed("bandwidth") {
		limit, err := humanize.ParseBytes(syncFlags.Bandwidth)
		if err != nil {
			return fmt.Errorf("invalid bandwidth limit %q: %w", syncFlags.Bandwidth, err)
		}
		cfg.Performance.BandwidthLimit = int64(limit)
	}

	if len(syncFlags.Exclude) > 0 {
		cfg.Exclude = syncFlags.Exclude
	}

	if flags.Changed("output") {
		cfg.Output.Format = syncFlags.Output
	}

	if flags.Changed("log") {
		cfg.Logging.File = syncFlags.LogFile
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = syncFlags.LogFormat
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = syncFlags.LogLevel
	}

	if globalFlags.Quiet {
		cfg.Output.Quiet = true
	}
	if globalFlags.Verbose {
		cfg.Logging.Level = "debug"
	}

	return nil
}

// validateSyncConfig checks the merged configuration and returns the
// normalized source and destination paths
func validateSyncConfig(cfg *config.Config) (source, dest string, err error) {
	if cfg.Sync.Source == "" {
		return "", "", &models.ValidationError{Field: "source", Message: "required (use --source or sync.source)"}
	}
	if cfg.Sync.Dest == "" {
		return "", "", &models.ValidationError{Field: "dest", Message: "required (use --dest or sync.dest)"}
	}

	if err := cfg.Validate(); err != nil {
		return "", "", err
	}

	source, err = platform.NormalizePath(cfg.Sync.Source)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve source path: %w", err)
	}

	dest, err = platform.NormalizePath(cfg.Sync.Dest)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve destination path: %w", err)
	}

	// Validate paths are not identical
	if platform.SamePath(source, dest) {
		return "", "", fmt.Errorf("source and destination cannot be the same: %s", source)
	}

	// Validate paths are not nested
	if platform.IsSubPath(source, dest) {
		return "", "", fmt.Errorf("destination cannot be inside source directory")
	}
	if platform.IsSubPath(dest, source) {
		return "", "", fmt.Errorf("source cannot be inside destination directory")
	}

	return source, dest, nil
}
