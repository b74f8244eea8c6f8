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
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		interval  time.Duration
		minText   int
		trim      bool
		canonical bool
		noWatch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the headless capture daemon",
		Long: `Run clipsift as a daemon: poll the system clipboard into the in-memory
history, persist saved records, and expose the HTTP and websocket
interface. Nothing is printed; use 'clipsift history' or the API to
inspect captures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := GetLogger()
			comps, err := buildComponents(cfg, log)
			if err != nil {
				return err
			}
			defer comps.Close()

			records, err := openRecords()
			if err != nil {
				return err
			}
			defer records.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}

			srv := server.New(server.Options{
				Addr:      addr,
				History:   comps.history,
				Writer:    comps.writer,
				Extractor: comps.extractor,
				Records:   records,
				Blobs:     comps.blobs,
				Logger:    log,
			})

			var mon *monitor.Monitor
			if !noWatch {
				if interval <= 0 {
					interval = cfg.Monitor.Interval.Std()
				}
				mon = monitor.New(monitor.Options{
					Source:    comps.clip,
					Extractor: comps.extractor,
					Processor: buildProcessor(log, minText, trim, canonical),
					History:   comps.history,
					Interval:  interval,
					Logger:    log,
				})
				mon.OnEntry(srv.HandleEntry)
				mon.Start(ctx)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case <-ctx.Done():
				log.Info("shutting down", zap.String("signal", "interrupt"))
			case err := <-errCh:
				if mon != nil {
					mon.Stop()
				}
				return fmt.Errorf("http server failed: %w", err)
			}

			if mon != nil {
				mon.Stop()
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")
	cmd.Flags().IntVar(&minText, "min-text", 0, "drop text captures shorter than this many characters")
	cmd.Flags().BoolVar(&trim, "trim", false, "trim surrounding whitespace from text captures")
	cmd.Flags().BoolVar(&canonical, "canonicalize", false, "pretty-print structured JSON captures")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "serve the API without polling the clipboard")

	return cmd
}
