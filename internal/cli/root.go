package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GlobalFlags holds the persistent flags shared by every command
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// NewRootCommand assembles the foldersync command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "foldersync",
		Short: "One-way periodic folder mirroring",
		Long: `foldersync keeps a destination folder an exact copy of a source folder.
Every interval it prunes what the source no longer has, then copies new and
changed files, detecting changes by content digest.`,
		Version:       versionLine(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalFlags.ConfigFile, "config", "", "config file (default is $HOME/.config/foldersync/config.yaml)")
	flags.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "log at debug level and echo log lines to stderr")
	flags.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func versionLine() string {
	info := currentBuildInfo()
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildDate)
}
