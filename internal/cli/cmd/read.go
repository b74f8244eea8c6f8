package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipsift/clipsift/internal/storage"
	"github.com/clipsift/clipsift/pkg/format"
)

func newReadCmd() *cobra.Command {
	var (
		jsonOut  bool
		save     bool
		title    string
		library  string
		noColors bool
		noIcons  bool
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Capture the current clipboard once",
		Long: `Read the system clipboard, normalize it into an entry, and print it.

Examples:
  clipsift read                 # show the current clipboard
  clipsift read --json          # raw entry as JSON
  clipsift read --save          # also persist it as a record`,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := buildComponents(cfg, GetLogger())
			if err != nil {
				return err
			}
			defer comps.Close()

			e := comps.extractor.Extract(cmd.Context(), comps.clip)
			if e == nil {
				return fmt.Errorf("clipboard is empty or unreadable")
			}

			if save {
				records, err := openRecords()
				if err != nil {
					return err
				}
				defer records.Close()

				id, err := records.Insert(storage.RecordFromEntry(e, title, library))
				if err != nil {
					return fmt.Errorf("failed to save record: %w", err)
				}
				fmt.Fprintf(os.Stderr, "saved record %s\n", id)
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(e)
			}

			opts := format.DefaultOptions()
			if noColors {
				opts.UseColors = false
			}
			if noIcons {
				opts.UseIcons = false
			}
			fmt.Println(format.Entry(e, opts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the entry as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "persist the capture as a record")
	cmd.Flags().StringVar(&title, "title", "", "record title for --save (default: derived from content)")
	cmd.Flags().StringVar(&library, "library", "", "library for --save")
	cmd.Flags().BoolVar(&noColors, "no-colors", false, "disable colored output")
	cmd.Flags().BoolVar(&noIcons, "no-icons", false, "disable icons in output")

	return cmd
}
