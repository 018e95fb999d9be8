package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version is the CLI version (set during build)
	Version = "dev"
	// GitCommit is the git commit hash (set during build)
	GitCommit = "unknown"
	// BuildDate is the build date (set during build)
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of the GCS Manager CLI, along with build information.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gcs version %s\n", Version)
		fmt.Fprintf(out, "  Commit:    %s\n", GitCommit)
		fmt.Fprintf(out, "  Built:     %s\n", BuildDate)
		fmt.Fprintf(out, "  Go:        %s\n", runtime.Version())
		fmt.Fprintf(out, "  Platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
