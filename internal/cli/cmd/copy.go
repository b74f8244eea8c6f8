package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/clipboard"
)

func newCopyCmd() *cobra.Command {
	var canonical bool

	cmd := &cobra.Command{
		Use:   "copy [text]",
		Short: "Write text to the system clipboard",
		Long: `Write text from the arguments, or stdin when none are given, to the
system clipboard. Every strategy in the chain is tried; the command
fails only when all of them do.

Examples:
  clipsift copy "hello there"
  jq . config.json | clipsift copy
  clipsift copy --canonical '{"b":2,"a":1}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 {
				text = strings.Join(args, " ")
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}

			if canonical {
				text = classify.Canonicalize(text, "text/plain")
			}

			writer := clipboard.New(clipboard.Options{Logger: GetLogger()})
			structured := classify.IsStructured(text)
			if !writer.WriteText(cmd.Context(), text, structured) {
				return fmt.Errorf("no clipboard strategy succeeded")
			}

			fmt.Fprintf(os.Stderr, "copied %d bytes\n", len(text))
			return nil
		},
	}

	cmd.Flags().BoolVar(&canonical, "canonical", false, "pretty-print structured JSON before copying")

	return cmd
}
