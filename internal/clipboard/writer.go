package clipboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/types"
)

// Writer runs the ordered strategy list. The order is fixed: copy commands
// first, the native API second, the plain-text fallback last. A failing
// strategy never stops the ones after it.
type Writer struct {
	strategies []Strategy
	logger     *zap.Logger
}

// Options configures a Writer.
type Options struct {
	Logger *zap.Logger
}

// New assembles the default strategy list.
func New(opts Options) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		strategies: []Strategy{
			NewCommandStrategy(logger),
			NewNativeStrategy(logger),
			NewFallbackStrategy(),
		},
		logger: logger,
	}
}

// NewWithStrategies builds a Writer over an explicit strategy list.
func NewWithStrategies(logger *zap.Logger, strategies ...Strategy) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{strategies: strategies, logger: logger}
}

// Strategies exposes the ordered list for status surfaces.
func (w *Writer) Strategies() []Strategy { return w.strategies }

// WriteText attempts every available strategy in order and reports whether
// any of them succeeded. It never returns an error and never panics.
func (w *Writer) WriteText(ctx context.Context, text string, structured bool) bool {
	results := w.attemptAll(ctx, text, structured)
	ok := AnySuccess(results)
	if !ok {
		w.logger.Warn("clipboard write failed on every strategy",
			zap.Int("attempted", len(results)))
	}
	return ok
}

func (w *Writer) attemptAll(ctx context.Context, text string, structured bool) []Result {
	results := make([]Result, 0, len(w.strategies))
	for _, s := range w.strategies {
		if !s.Available() {
			w.logger.Debug("strategy unavailable", zap.String("strategy", s.Name()))
			continue
		}
		err := s.Write(ctx, text, structured)
		if err != nil {
			w.logger.Debug("strategy failed",
				zap.String("strategy", s.Name()), zap.Error(err))
		}
		results = append(results, Result{Strategy: s.Name(), Err: err})
	}
	return results
}

// Write copies arbitrary content. Only strings are writable; any other
// value reports false without an attempt.
func (w *Writer) Write(ctx context.Context, content any, structured bool) bool {
	text, ok := content.(string)
	if !ok {
		w.logger.Warn("refusing non-string clipboard content",
			zap.String("go_type", fmt.Sprintf("%T", content)))
		return false
	}
	return w.WriteText(ctx, text, structured)
}

// WritePayload copies one payload. File payloads are refused: the write
// protocol is defined over text only.
func (w *Writer) WritePayload(ctx context.Context, p types.Payload) bool {
	if p.Kind != types.PayloadText {
		w.logger.Warn("refusing non-text payload",
			zap.String("mime", p.MIME), zap.String("kind", p.Kind.String()))
		return false
	}
	structured := classify.PlainTextMIME(p.MIME) && classify.IsStructured(p.Text)
	return w.WriteText(ctx, p.Text, structured)
}
