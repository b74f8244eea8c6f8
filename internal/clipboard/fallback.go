package clipboard

import (
	"context"

	"github.com/atotto/clipboard"
)

// FallbackStrategy is the final plain-text attempt. It runs after the
// richer paths regardless of their outcome, so a bare text copy can still
// land when everything else misbehaves.
type FallbackStrategy struct {
	writeAll func(string) error
}

// NewFallbackStrategy builds the last-resort strategy.
func NewFallbackStrategy() *FallbackStrategy {
	return &FallbackStrategy{writeAll: clipboard.WriteAll}
}

func (s *FallbackStrategy) Name() string { return "fallback" }

// Available is always true; failure is reported by Write itself.
func (s *FallbackStrategy) Available() bool { return true }

// Write places plain text only. Structured content loses its JSON
// representation on this path, which beats losing the copy entirely.
func (s *FallbackStrategy) Write(ctx context.Context, text string, structured bool) error {
	return s.writeAll(text)
}
