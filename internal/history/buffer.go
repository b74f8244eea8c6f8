// Package history keeps the session's captures in memory, most recent
// first. Nothing here persists; saving an entry is the record store's job.
package history

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/blob"
	"github.com/clipsift/clipsift/internal/types"
)

// DefaultCapacity bounds the buffer when the caller does not choose one.
const DefaultCapacity = 100

// ErrNoEntry is returned when an id is not in the buffer.
var ErrNoEntry = errors.New("history: no such entry")

// Options configures a Buffer.
type Options struct {
	// Capacity caps the buffer; 0 means unbounded.
	Capacity int
	// Blobs, when set, receives the handle releases of evicted and cleared
	// entries.
	Blobs  *blob.Store
	Logger *zap.Logger
}

// Buffer is the ordered session history.
//
// Record is called when an extraction completes, so entries land in
// completion order: when two captures resolve out of their trigger order,
// the one that resolved first was recorded first and the later-resolving
// one sits above it.
type Buffer struct {
	mu       sync.Mutex
	entries  []*types.Entry
	capacity int
	blobs    *blob.Store
	logger   *zap.Logger
}

// New builds a Buffer.
func New(opts Options) *Buffer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Buffer{
		capacity: opts.Capacity,
		blobs:    opts.Blobs,
		logger:   logger,
	}
}

// Record prepends an entry so the most recent capture is always first.
// Entries over capacity fall off the tail and have their content handles
// released. Nil and empty entries are ignored.
func (b *Buffer) Record(e *types.Entry) {
	if e == nil || e.Empty() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]*types.Entry, 0, len(b.entries)+1)
	entries = append(entries, e)
	entries = append(entries, b.entries...)

	if b.capacity > 0 && len(entries) > b.capacity {
		evicted := entries[b.capacity:]
		entries = entries[:b.capacity]
		b.releaseLocked(evicted)
	}
	b.entries = entries

	b.logger.Debug("entry recorded",
		zap.String("id", e.ID),
		zap.String("source", e.SourceLabel),
		zap.Int("held", len(b.entries)))
}

// Clear empties the buffer and releases every held content handle.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked(b.entries)
	b.entries = nil
	b.logger.Debug("history cleared")
}

// Entries returns a snapshot, most recent first.
func (b *Buffer) Entries() []*types.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*types.Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len reports the number of held entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Get finds an entry by id.
func (b *Buffer) Get(id string) (*types.Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Remove drops one entry and releases its handles.
func (b *Buffer) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if e.ID != id {
			continue
		}
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
		b.releaseLocked([]*types.Entry{e})
		return true
	}
	return false
}

// EditPayload rewrites the text of one payload of one held entry, in place,
// preserving the entry's identity.
func (b *Buffer) EditPayload(id string, index int, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.ID == id {
			return e.EditPayloadText(index, text)
		}
	}
	return ErrNoEntry
}

func (b *Buffer) releaseLocked(es []*types.Entry) {
	if b.blobs == nil {
		return
	}
	for _, e := range es {
		b.blobs.ReleaseAll(e.Handles())
	}
}
