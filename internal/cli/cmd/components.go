package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/blob"
	"github.com/clipsift/clipsift/internal/clipboard"
	"github.com/clipsift/clipsift/internal/config"
	"github.com/clipsift/clipsift/internal/extract"
	"github.com/clipsift/clipsift/internal/history"
	"github.com/clipsift/clipsift/internal/pipeline"
	"github.com/clipsift/clipsift/internal/source"
	"github.com/clipsift/clipsift/internal/storage"
)

// components bundles the capture machinery the daemon-style commands share.
// Close releases any blob content spilled to disk.
type components struct {
	blobs     *blob.Store
	extractor *extract.Extractor
	history   *history.Buffer
	writer    *clipboard.Writer
	clip      *source.SystemClipboard
}

func buildComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	if err := config.EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("failed to prepare data directories: %w", err)
	}

	blobs := blob.New(blob.Options{
		SpillDir: cfg.Blob.SpillDir,
		MemLimit: int(cfg.Blob.MemLimit),
		Logger:   logger,
	})

	return &components{
		blobs: blobs,
		extractor: extract.New(extract.Options{
			Blobs:       blobs,
			Logger:      logger,
			MaxItemSize: cfg.Monitor.MaxItemSize,
		}),
		history: history.New(history.Options{
			Capacity: cfg.History.Capacity,
			Blobs:    blobs,
			Logger:   logger,
		}),
		writer: clipboard.New(clipboard.Options{Logger: logger}),
		clip:   source.NewSystemClipboard(),
	}, nil
}

func (c *components) Close() {
	_ = c.blobs.Close()
}

// buildProcessor assembles the entry pipeline from the shared watch flags.
// Consecutive duplicates are always dropped; the rest is opt-in.
func buildProcessor(logger *zap.Logger, minText int, trim, canonical bool) *pipeline.Processor {
	p := pipeline.NewProcessor(logger)
	p.AddFilter(pipeline.DedupeFilter())
	if minText > 0 {
		p.AddFilter(pipeline.MinTextFilter(minText))
	}
	if trim {
		p.AddTransformer(pipeline.TrimSpaceTransformer())
	}
	if canonical {
		p.AddTransformer(pipeline.CanonicalizeTransformer())
	}
	return p
}

// openRecords opens the configured record store. The store holds a file
// lock, so close it before starting anything long-lived.
func openRecords() (*storage.BoltStore, error) {
	if err := config.EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("failed to prepare data directories: %w", err)
	}
	st, err := storage.New(storage.Options{DBPath: cfg.Storage.DBPath, Logger: GetLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return st, nil
}
