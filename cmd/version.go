package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// versionCmd prints build metadata. Include it when reporting a wrong grade.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show trackademic build information.",
	Long: `Show the release, commit and build date of this binary together with
the Go runtime it was compiled with and the configured storage backend.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("trackademic %s (%s)\n", version, commit)
		cmd.Printf("  built:    %s\n", date)
		cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  backend:  %s\n", viper.GetString("backend"))
	},
}
