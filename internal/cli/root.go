// Package cli implements the command-line interface for clipsift
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cmdpkg "github.com/clipsift/clipsift/internal/cli/cmd"
	"github.com/clipsift/clipsift/internal/config"
)

// Version information, overwritten from main at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "none"
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	cfg    *config.Config
	logger *zap.Logger
)

// RootCmd is the base command; every subcommand hangs off it.
var RootCmd = &cobra.Command{
	Use:   "clipsift",
	Short: "Clipboard capture daemon and toolbox",
	Long: `clipsift captures clipboard activity into a normalized history,
pretty-prints structured text, writes content back to the system
clipboard, and serves the capture feed over HTTP and websockets.

Run 'clipsift watch' to start capturing in the foreground, or
'clipsift serve' for the headless daemon.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err = newLogger(cfg, verbose, quiet)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		cmdpkg.SetConfig(cfg)
		cmdpkg.SetLogger(logger)
		return nil
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	defer cleanup()

	if err := RootCmd.Execute(); err != nil {
		cleanup()
		os.Exit(1)
	}
}

// SetVersionInfo records build-time version details for the version command.
func SetVersionInfo(version, buildTime, commit string) {
	Version = version
	BuildTime = buildTime
	Commit = commit
	cmdpkg.SetVersionInfo(version, buildTime, commit)
}

func cleanup() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: user config dir/clipsift/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")

	for _, command := range cmdpkg.GetCommands() {
		RootCmd.AddCommand(command)
	}

	cmdpkg.SetVersionInfo(Version, BuildTime, Commit)
}
