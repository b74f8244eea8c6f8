// Package pipeline runs recorded-entry preprocessing: filters that drop
// unwanted captures and transformers that rewrite them in flight.
package pipeline

import (
	"strings"

	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/types"
)

// EntryFilter decides whether an entry continues through the pipeline.
// Returning false drops it.
type EntryFilter func(*types.Entry) bool

// EntryTransformer rewrites an entry. Returning nil keeps the input.
type EntryTransformer func(*types.Entry) *types.Entry

// Processor applies filters, then transformers, in registration order.
type Processor struct {
	filters      []EntryFilter
	transformers []EntryTransformer
	logger       *zap.Logger
}

// NewProcessor builds an empty Processor that passes entries through.
func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger}
}

// AddFilter appends a filter.
func (p *Processor) AddFilter(f EntryFilter) {
	p.filters = append(p.filters, f)
}

// AddTransformer appends a transformer.
func (p *Processor) AddTransformer(t EntryTransformer) {
	p.transformers = append(p.transformers, t)
}

// Process runs the pipeline. ok is false when a filter dropped the entry.
func (p *Processor) Process(e *types.Entry) (*types.Entry, bool) {
	if e == nil {
		return nil, false
	}
	for _, f := range p.filters {
		if !f(e) {
			p.logger.Debug("entry dropped by filter",
				zap.String("id", e.ID),
				zap.String("source", e.SourceLabel))
			return nil, false
		}
	}
	for _, t := range p.transformers {
		if next := t(e); next != nil {
			e = next
		}
	}
	return e, true
}

// MinTextFilter drops entries whose primary text is shorter than n runes.
// Entries without text (file captures) pass.
func MinTextFilter(n int) EntryFilter {
	return func(e *types.Entry) bool {
		if n <= 0 {
			return true
		}
		text, ok := e.PrimaryText()
		if !ok {
			return true
		}
		return len([]rune(text)) >= n
	}
}

// DedupeFilter drops an entry whose primary text repeats the previously
// accepted one. State is per-filter; register a fresh one per pipeline.
func DedupeFilter() EntryFilter {
	var prev string
	var seen bool
	return func(e *types.Entry) bool {
		text, ok := e.PrimaryText()
		if !ok {
			return true
		}
		if seen && text == prev {
			return false
		}
		prev, seen = text, true
		return true
	}
}

// TrimSpaceTransformer trims surrounding whitespace from every text
// payload.
func TrimSpaceTransformer() EntryTransformer {
	return func(e *types.Entry) *types.Entry {
		for i, p := range e.Types {
			if p.Kind != types.PayloadText {
				continue
			}
			if trimmed := strings.TrimSpace(p.Text); trimmed != p.Text {
				_ = e.EditPayloadText(i, trimmed)
			}
		}
		return e
	}
}

// CanonicalizeTransformer pretty-prints structured plain-text payloads in
// place, preserving entry identity.
func CanonicalizeTransformer() EntryTransformer {
	return func(e *types.Entry) *types.Entry {
		for i, p := range e.Types {
			if p.Kind != types.PayloadText {
				continue
			}
			if out := classify.Canonicalize(p.Text, p.MIME); out != p.Text {
				_ = e.EditPayloadText(i, out)
			}
		}
		return e
	}
}
