package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, pushed down from the cli package.
var (
	version   string
	buildTime string
	commit    string
)

// SetVersionInfo records build-time version details.
func SetVersionInfo(v, bt, c string) {
	version = v
	buildTime = bt
	commit = c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("clipsift\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Build Time: %s\n", buildTime)
			fmt.Printf("Commit:     %s\n", commit)
		},
	}
}
