package config

import (
	"github.com/sdejongh/foldersync/pkg/models"
)

// Default values mirrored by the CLI flags
const (
	DefaultIntervalMs = 5000
	DefaultLogFile    = "folder_sync.log"
	DefaultBufferSize = 65536
)

// Config represents the application configuration
type Config struct {
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// SyncConfig holds sync-related settings
type SyncConfig struct {
	Source     string                  `yaml:"source"`
	Dest       string                  `yaml:"dest"`
	IntervalMs int                     `yaml:"interval_ms"`
	Comparison models.ComparisonMethod `yaml:"comparison"`
	// FailOnCompareError stops the whole loop when two files cannot be compared
	FailOnCompareError bool `yaml:"fail_on_compare_error"`
	// MaxDepth bounds directory recursion (0 = unlimited)
	MaxDepth int `yaml:"max_depth"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"` // bytes per second, 0 = unlimited
}

// OutputConfig holds console output settings
type OutputConfig struct {
	Format string `yaml:"format"` // "human" or "json"
	Quiet  bool   `yaml:"quiet"`  // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	File       string `yaml:"file"`
	Format     string `yaml:"format"` // "classic", "text", or "json"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	MaxSize    int64  `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			IntervalMs:         DefaultIntervalMs,
			Comparison:         models.CompareMD5,
			FailOnCompareError: true,
		},
		Performance: PerformanceConfig{
			BufferSize:     DefaultBufferSize,
			BandwidthLimit: 0,
		},
		Output: OutputConfig{
			Format: "human",
		},
		Logging: LoggingConfig{
			File:       DefaultLogFile,
			Format:     "classic",
			Level:      "debug",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 5,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Sync.IntervalMs <= 0 {
		return &models.ValidationError{
			Field:   "sync.interval_ms",
			Message: "must be greater than 0",
		}
	}

	validComparisons := map[models.ComparisonMethod]bool{models.CompareMD5: true, models.CompareSHA256: true}
	if !validComparisons[c.Sync.Comparison] {
		return &models.ValidationError{
			Field:   "sync.comparison",
			Message: "must be 'md5' or 'sha256'",
		}
	}

	if c.Sync.MaxDepth < 0 {
		return &models.ValidationError{
			Field:   "sync.max_depth",
			Message: "must not be negative",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	if c.Logging.File == "" {
		return &models.ValidationError{
			Field:   "logging.file",
			Message: "must not be empty",
		}
	}

	validLogFormats := map[string]bool{"classic": true, "text": true, "json": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'classic', 'text', or 'json'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
