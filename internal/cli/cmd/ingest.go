package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipsift/clipsift/internal/source"
	"github.com/clipsift/clipsift/pkg/format"
)

func newIngestCmd() *cobra.Command {
	var (
		mimeType string
		label    string
		jsonOut  bool
		noColors bool
		noIcons  bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Build an entry from files or stdin",
		Long: `Normalize file arguments, or stdin when no files are given, into an
entry and print it. Binary content is staged in the blob store for the
lifetime of the command.

Examples:
  clipsift ingest notes.txt photo.png
  curl -s https://api.example.com/config | clipsift ingest --mime application/json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := buildComponents(cfg, GetLogger())
			if err != nil {
				return err
			}
			defer comps.Close()

			var transfer source.Transfer
			if len(args) > 0 {
				transfer, err = source.FileTransfer(label, args)
			} else {
				transfer, err = source.StdinTransfer(label, mimeType, os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("failed to build transfer: %w", err)
			}

			e := comps.extractor.Extract(cmd.Context(), transfer)
			if e == nil {
				return fmt.Errorf("nothing extractable in the input")
			}
			comps.history.Record(e)

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

	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type for stdin content (default text/plain)")
	cmd.Flags().StringVar(&label, "label", "", "source label recorded on the entry")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the entry as JSON")
	cmd.Flags().BoolVar(&noColors, "no-colors", false, "disable colored output")
	cmd.Flags().BoolVar(&noIcons, "no-icons", false, "disable icons in output")

	return cmd
}
