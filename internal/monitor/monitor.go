// Package monitor polls the system clipboard and feeds changed text through
// extraction, processing and the history buffer.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/extract"
	"github.com/clipsift/clipsift/internal/history"
	"github.com/clipsift/clipsift/internal/pipeline"
	"github.com/clipsift/clipsift/internal/source"
	"github.com/clipsift/clipsift/internal/types"
)

// DefaultInterval is the poll cadence when Options leaves Interval zero.
const DefaultInterval = time.Second

// EntryHandler observes every recorded entry. Handlers run on the monitor
// goroutine and must not block.
type EntryHandler func(*types.Entry)

// PollSource is the clipboard the monitor watches. SystemClipboard
// implements it; tests substitute fakes.
type PollSource interface {
	source.ItemSet
	Poll(prev string) (current string, changed bool, err error)
}

// Options configures New. Source, Extractor and History are required.
type Options struct {
	Source    PollSource
	Extractor *extract.Extractor
	Processor *pipeline.Processor
	History   *history.Buffer
	Interval  time.Duration
	Logger    *zap.Logger
}

// Monitor owns the polling goroutine. Start and Stop are idempotent.
type Monitor struct {
	source    PollSource
	extractor *extract.Extractor
	processor *pipeline.Processor
	history   *history.Buffer
	interval  time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	handlers []EntryHandler
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
	last     string
}

// New builds a stopped monitor.
func New(opts Options) *Monitor {
	if opts.Source == nil {
		panic("monitor: Options.Source is required")
	}
	if opts.Extractor == nil {
		panic("monitor: Options.Extractor is required")
	}
	if opts.History == nil {
		panic("monitor: Options.History is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	processor := opts.Processor
	if processor == nil {
		processor = pipeline.NewProcessor(opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		source:    opts.Source,
		extractor: opts.Extractor,
		processor: processor,
		history:   opts.History,
		interval:  interval,
		logger:    logger,
	}
}

// OnEntry registers a handler for recorded entries.
func (m *Monitor) OnEntry(h EntryHandler) {
	if h == nil {
		return
	}
	m.mu.Lock()
	m.handlers = append(m.handlers, h)
	m.mu.Unlock()
}

// Start launches the polling goroutine. The current clipboard text is
// swallowed as the baseline so stale content does not replay as a capture.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	if text, changed, err := m.source.Poll(""); err == nil && changed {
		m.last = text
	}

	m.logger.Info("clipboard monitor started",
		zap.Duration("interval", m.interval),
		zap.String("source", m.source.Label()))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.pollOnce(ctx)
			}
		}
	}()
}

// Stop ends the polling goroutine and waits for it.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("clipboard monitor stopped")
}

// pollOnce records one capture when the clipboard changed since last poll.
func (m *Monitor) pollOnce(ctx context.Context) {
	text, changed, err := m.source.Poll(m.last)
	if err != nil {
		m.logger.Debug("clipboard poll failed", zap.Error(err))
		return
	}
	if !changed {
		return
	}
	m.last = text

	// Extract from the polled text itself, not a second live read, so the
	// recorded capture is exactly what the poll observed.
	e := m.extractor.Extract(ctx, source.TextItemSet(m.source.Label(), text))
	m.record(e)
}

// CaptureOnce reads the live source once and records the result. It returns
// the recorded entry, or nil when the capture was empty or filtered out.
func (m *Monitor) CaptureOnce(ctx context.Context) *types.Entry {
	e := m.extractor.Extract(ctx, m.source)
	return m.record(e)
}

func (m *Monitor) record(e *types.Entry) *types.Entry {
	if e == nil {
		return nil
	}
	processed, ok := m.processor.Process(e)
	if !ok {
		return nil
	}
	m.history.Record(processed)
	m.logger.Debug("capture recorded",
		zap.String("id", processed.ID),
		zap.String("source", processed.SourceLabel))

	m.mu.Lock()
	handlers := make([]EntryHandler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()
	for _, h := range handlers {
		h(processed)
	}
	return processed
}
