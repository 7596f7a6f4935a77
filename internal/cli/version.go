package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// buildInfo describes the running binary
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// currentBuildInfo prefers ldflags values and falls back to what the Go
// toolchain stamped into the binary (go install, VCS builds)
func currentBuildInfo() buildInfo {
	info := buildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		}
	}
	return info
}

func (b buildInfo) write(out io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case "human", "":
		fmt.Fprintf(out, "foldersync %s\n", b.Version)
		fmt.Fprintf(out, "  Commit:     %s\n", b.Commit)
		fmt.Fprintf(out, "  Built:      %s\n", b.BuildDate)
		fmt.Fprintf(out, "  Go version: %s\n", b.GoVersion)
		fmt.Fprintf(out, "  OS/Arch:    %s\n", b.Platform)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s (use: human, json)", format)
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the foldersync version, commit and build date. Values not
stamped at link time are read from the Go build metadata.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuildInfo()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return nil
			}
			return info.write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")
	cmd.Flags().StringVarP(&format, "output", "o", "human", "output format: human, json")

	return cmd
}
