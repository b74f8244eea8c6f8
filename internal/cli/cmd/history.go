package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipsift/clipsift/internal/types"
	"github.com/clipsift/clipsift/pkg/format"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect capture history",
		Long: `Inspect capture history:
  • List recent captures
  • Show a specific capture
  • Remove captures or clear the buffer

History lives in the daemon process. With --addr these commands talk to
a running daemon over HTTP; without it, list falls back to a one-shot
capture of the current clipboard.`,
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryRemoveCmd())
	cmd.AddCommand(newHistoryClearCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var (
		addr     string
		library  string
		limit    int
		jsonOut  bool
		compact  bool
		noColors bool
		noIcons  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captures",
		Long: `List history entries from a running daemon, or the current clipboard
as a one-shot capture when no --addr is given. With --library, list
saved records instead.

Examples:
  clipsift history list --addr 127.0.0.1:8750
  clipsift history list --addr 127.0.0.1:8750 -n 20 --compact
  clipsift history list --library work`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if library != "" {
				return listRecords(addr, library, limit, jsonOut, opts)
			}

			entries, err := collectEntries(cmd, addr, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			fmt.Println(format.EntryList(entries, opts))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address of a running daemon")
	cmd.Flags().StringVar(&library, "library", "", "list saved records from this library instead")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "use compact single-line format")
	cmd.Flags().BoolVar(&noColors, "no-colors", false, "disable colored output")
	cmd.Flags().BoolVar(&noIcons, "no-icons", false, "disable icons in output")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var (
		addr    string
		jsonOut bool
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a specific capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" && cfg.Server.Addr == "" {
				return fmt.Errorf("history lives in the daemon; specify --addr")
			}

			client := newDaemonClient(daemonAddr(addr))
			remote, err := client.getEntry(args[0])
			if err != nil {
				return err
			}

			if raw {
				e := remote.toEntry()
				text, ok := e.PrimaryText()
				if !ok {
					return fmt.Errorf("entry %s has no text representation", args[0])
				}
				fmt.Print(text)
				return nil
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(remote)
			}

			opts := format.DefaultOptions()
			opts.MaxLines = 0
			opts.MaxWidth = 0
			fmt.Println(format.Entry(remote.toEntry(), opts))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address of a running daemon (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the primary text only")

	return cmd
}

func newHistoryRemoveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "remove <id...>",
		Short: "Remove captures from the daemon's history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newDaemonClient(daemonAddr(addr))
			for _, id := range args {
				if err := client.removeEntry(id); err != nil {
					return fmt.Errorf("failed to remove %s: %w", id, err)
				}
			}
			fmt.Printf("removed %d entries\n", len(args))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address of a running daemon (default from config)")

	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	var (
		addr  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the daemon's history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Print("This empties the capture history. Continue? (y/N): ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" && response != "yes" {
					fmt.Println("Cancelled.")
					return nil
				}
			}

			client := newDaemonClient(daemonAddr(addr))
			if err := client.clearEntries(); err != nil {
				return err
			}
			fmt.Println("history cleared")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address of a running daemon (default from config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

// collectEntries reads the daemon's history, or captures the clipboard once
// when no daemon address is given.
func collectEntries(cmd *cobra.Command, addr string, limit int) ([]*types.Entry, error) {
	if addr != "" {
		client := newDaemonClient(addr)
		remotes, err := client.listEntries()
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(remotes) > limit {
			remotes = remotes[:limit]
		}
		entries := make([]*types.Entry, 0, len(remotes))
		for _, re := range remotes {
			entries = append(entries, re.toEntry())
		}
		return entries, nil
	}

	comps, err := buildComponents(cfg, GetLogger())
	if err != nil {
		return nil, err
	}
	defer comps.Close()

	e := comps.extractor.Extract(cmd.Context(), comps.clip)
	if e == nil {
		return nil, nil
	}
	return []*types.Entry{e}, nil
}

// listRecords prints saved records, via the daemon when addr is set and
// straight from the store otherwise.
func listRecords(addr, library string, limit int, jsonOut bool, opts format.Options) error {
	if addr != "" {
		client := newDaemonClient(addr)
		records, err := client.listRecords(library, limit)
		if err != nil {
			return err
		}
		return printRecords(records, jsonOut, opts)
	}

	store, err := openRecords()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(library, limit)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	return printRecords(records, jsonOut, opts)
}
