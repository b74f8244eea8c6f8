// Package clipboard writes text back to the OS clipboard through an ordered
// list of strategies. Every available strategy is attempted; a single
// success makes the write a success. Nothing in this package panics or
// returns an error to callers of the write operation: outcomes are booleans.
package clipboard

import "context"

// Strategy is one way of placing text on the system clipboard.
type Strategy interface {
	Name() string
	// Available reports whether the strategy can run in this environment.
	// Unavailable strategies are skipped, not failed.
	Available() bool
	// Write places text on the clipboard. structured asks for a JSON
	// representation alongside the plain one where the mechanism allows it.
	Write(ctx context.Context, text string, structured bool) error
}

// Result is the outcome of a single strategy attempt.
type Result struct {
	Strategy string
	Err      error
}

// AnySuccess reports whether at least one attempt succeeded.
func AnySuccess(results []Result) bool {
	for _, r := range results {
		if r.Err == nil {
			return true
		}
	}
	return false
}
