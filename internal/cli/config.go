package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sdejongh/foldersync/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the foldersync configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			bandwidth := "unlimited"
			if cfg.Performance.BandwidthLimit > 0 {
				bandwidth = humanize.Bytes(uint64(cfg.Performance.BandwidthLimit)) + "/s"
			}
			exclude := "none"
			if len(cfg.Exclude) > 0 {
				exclude = strings.Join(cfg.Exclude, ", ")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s\n", cfg.Sync.Source)
			fmt.Fprintf(out, "Destination: %s\n", cfg.Sync.Dest)
			fmt.Fprintf(out, "Interval: %d ms\n", cfg.Sync.IntervalMs)
			fmt.Fprintf(out, "Comparison: %s\n", cfg.Sync.Comparison)
			fmt.Fprintf(out, "Fail On Compare Error: %t\n", cfg.Sync.FailOnCompareError)
			fmt.Fprintf(out, "Exclude: %s\n", exclude)
			fmt.Fprintf(out, "Buffer Size: %s\n", humanize.IBytes(uint64(cfg.Performance.BufferSize)))
			fmt.Fprintf(out, "Bandwidth Limit: %s\n", bandwidth)
			fmt.Fprintf(out, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "Log File: %s\n", cfg.Logging.File)
			fmt.Fprintf(out, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}
