package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/monitor"
	"github.com/clipsift/clipsift/internal/server"
	"github.com/clipsift/clipsift/internal/types"
	"github.com/clipsift/clipsift/pkg/format"
)

func newWatchCmd() *cobra.Command {
	var (
		interval  time.Duration
		minText   int
		trim      bool
		canonical bool
		serveHTTP bool
		addr      string
		compact   bool
		noColors  bool
		noIcons   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the clipboard and print captures",
		Long: `Poll the system clipboard and print every capture as it lands in
history. Content already on the clipboard at startup is skipped.

Examples:
  clipsift watch                     # poll at the configured interval
  clipsift watch --interval 250ms    # poll faster
  clipsift watch --canonicalize      # pretty-print captured JSON
  clipsift watch --serve             # also expose the HTTP interface`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := GetLogger()
			comps, err := buildComponents(cfg, log)
			if err != nil {
				return err
			}
			defer comps.Close()

			if interval <= 0 {
				interval = cfg.Monitor.Interval.Std()
			}

			mon := monitor.New(monitor.Options{
				Source:    comps.clip,
				Extractor: comps.extractor,
				Processor: buildProcessor(log, minText, trim, canonical),
				History:   comps.history,
				Interval:  interval,
				Logger:    log,
			})

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

			mon.OnEntry(func(e *types.Entry) {
				fmt.Println(format.Entry(e, opts))
			})

			var srv *server.Server
			errCh := make(chan error, 1)
			if serveHTTP {
				if addr == "" {
					addr = cfg.Server.Addr
				}
				srv = server.New(server.Options{
					Addr:      addr,
					History:   comps.history,
					Writer:    comps.writer,
					Extractor: comps.extractor,
					Blobs:     comps.blobs,
					Logger:    log,
				})
				mon.OnEntry(srv.HandleEntry)
				go func() {
					errCh <- srv.Start()
				}()
			}

			mon.Start(ctx)
			fmt.Fprintf(os.Stderr, "watching clipboard every %s, ctrl-c to stop\n", interval)

			select {
			case <-ctx.Done():
			case err := <-errCh:
				mon.Stop()
				return err
			}

			mon.Stop()
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Warn("http server shutdown failed", zap.Error(err))
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")
	cmd.Flags().IntVar(&minText, "min-text", 0, "drop text captures shorter than this many characters")
	cmd.Flags().BoolVar(&trim, "trim", false, "trim surrounding whitespace from text captures")
	cmd.Flags().BoolVar(&canonical, "canonicalize", false, "pretty-print structured JSON captures")
	cmd.Flags().BoolVar(&serveHTTP, "serve", false, "also serve the HTTP and websocket interface")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for --serve (default from config)")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "use compact single-line format")
	cmd.Flags().BoolVar(&noColors, "no-colors", false, "disable colored output")
	cmd.Flags().BoolVar(&noIcons, "no-icons", false, "disable icons in output")

	return cmd
}
