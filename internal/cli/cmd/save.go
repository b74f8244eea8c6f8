package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipsift/clipsift/internal/storage"
)

func newSaveCmd() *cobra.Command {
	var (
		title   string
		library string
		id      string
		addr    string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Persist a capture as a record",
		Long: `Capture the current clipboard and save it to the record store. With
--id, ask a running daemon to save one of its history entries instead;
the daemon owns the store while it runs.

Examples:
  clipsift save --title "api token" --library work
  clipsift save --id 4f1c9a8e --addr 127.0.0.1:8750`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id != "" {
				client := newDaemonClient(daemonAddr(addr))
				rec, err := client.saveEntry(id, title, library)
				if err != nil {
					return err
				}
				fmt.Printf("saved record %s\n", rec.ID)
				return nil
			}

			comps, err := buildComponents(cfg, GetLogger())
			if err != nil {
				return err
			}
			defer comps.Close()

			e := comps.extractor.Extract(cmd.Context(), comps.clip)
			if e == nil {
				return fmt.Errorf("clipboard is empty or unreadable")
			}

			records, err := openRecords()
			if err != nil {
				return err
			}
			defer records.Close()

			recID, err := records.Insert(storage.RecordFromEntry(e, title, library))
			if err != nil {
				return fmt.Errorf("failed to save record: %w", err)
			}

			fmt.Printf("saved record %s\n", recID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "record title (default: derived from content)")
	cmd.Flags().StringVar(&library, "library", "", "library the record belongs to")
	cmd.Flags().StringVar(&id, "id", "", "save this history entry from a running daemon instead of capturing")
	cmd.Flags().StringVar(&addr, "addr", "", "daemon address for --id (default from config)")

	return cmd
}
