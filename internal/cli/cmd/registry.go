package cmd

import (
	"github.com/spf13/cobra"
)

// GetCommands returns all commands for registration on the root.
func GetCommands() []*cobra.Command {
	return []*cobra.Command{
		newWatchCmd(),
		newServeCmd(),
		newReadCmd(),
		newIngestCmd(),
		newCopyCmd(),
		newFmtCmd(),
		newSaveCmd(),
		newHistoryCmd(),
		newRecordsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	}
}
