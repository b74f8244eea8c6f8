package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipsift/clipsift/internal/classify"
)

func newFmtCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Canonicalize structured text from stdin",
		Long: `Read stdin and write it back canonicalized: structured JSON is
pretty-printed with two-space indentation, anything else passes
through unchanged.

Examples:
  echo '{"b":2,"a":1}' | clipsift fmt
  clipsift fmt --check < payload.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text := string(data)

			if check && !classify.IsStructured(text) {
				return fmt.Errorf("input is not structured")
			}

			out := classify.Canonicalize(text, "text/plain")
			if out != "" && !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail when stdin is not structured JSON")

	return cmd
}
