package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipsift/clipsift/internal/storage"
	"github.com/clipsift/clipsift/pkg/format"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage saved records",
		Long: `Manage records in the persistent store:
  • List saved records
  • Delete records

These commands open the store directly; stop the daemon first, or go
through its API while it runs.`,
	}

	cmd.AddCommand(newRecordsListCmd())
	cmd.AddCommand(newRecordsDeleteCmd())

	return cmd
}

func newRecordsListCmd() *cobra.Command {
	var (
		library  string
		limit    int
		jsonOut  bool
		compact  bool
		noColors bool
		noIcons  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved records",
		Long: `List saved records, newest first.

Examples:
  clipsift records list
  clipsift records list --library work -n 5
  clipsift records list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRecords()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(library, limit)
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}

			opts := format.DefaultOptions()
			if compact {
				opts = format.CompactOptions()
			}
			if noColors {
				opts.UseColors = false
			}
			if noIcons {
				opts.UseIcons = false
			}
			return printRecords(records, jsonOut, opts)
		},
	}

	cmd.Flags().StringVar(&library, "library", "", "filter by library")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of records to show (0 = all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "use compact single-line format")
	cmd.Flags().BoolVar(&noColors, "no-colors", false, "disable colored output")
	cmd.Flags().BoolVar(&noIcons, "no-icons", false, "disable icons in output")

	return cmd
}

func newRecordsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id...>",
		Short: "Delete saved records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Printf("This permanently deletes %d records. Continue? (y/N): ", len(args))
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" && response != "yes" {
					fmt.Println("Cancelled.")
					return nil
				}
			}

			store, err := openRecords()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(id); err != nil {
					return fmt.Errorf("failed to delete %s: %w", id, err)
				}
			}

			fmt.Printf("deleted %d records\n", len(args))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func printRecords(records []storage.EntryRecord, jsonOut bool, opts format.Options) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	fmt.Println(format.RecordList(records, opts))
	return nil
}
