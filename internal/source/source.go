// Package source defines the capture-source abstraction the extractor
// consumes. Callers inject concrete sources (the system clipboard, stdin,
// files, synthetic fixtures) instead of wiring platform events directly, so
// every frontend and test feeds the same seam.
package source

import (
	"context"
	"io"

	"github.com/clipsift/clipsift/internal/types"
)

// Transfer is a synchronous, paste/drop shaped capture: a set of named MIME
// representations with eagerly available text, plus optional item and file
// lists. All sequences are in capture enumeration order.
type Transfer interface {
	// Label names where the capture came from ("paste", "drop", "stdin").
	Label() string
	// TypeNames lists the declared representation MIME types in order.
	TypeNames() []string
	// Data returns the text for one representation. ok is false when the
	// representation exists in name only.
	Data(mimeType string) (text string, ok bool)
	// Items lists the transfer's item descriptors in order.
	Items() []Item
	// Files lists the transfer's attached files in order.
	Files() []File
}

// Item describes one transfer item. File is nil for string items.
type Item struct {
	Kind types.ItemKind
	MIME string
	File File
}

// File is lazily readable attached content.
type File interface {
	Name() string
	Size() int64
	MIME() string
	Open() (io.ReadCloser, error)
}

// ItemSet is an asynchronous, clipboard-read shaped capture. The read
// itself may fail; per-representation fetches fail independently.
type ItemSet interface {
	Label() string
	Read(ctx context.Context) ([]ClipboardItem, error)
}

// ClipboardItem exposes one clipboard item's advertised MIME types and a
// per-type content fetch.
type ClipboardItem interface {
	// Types lists advertised MIME types in enumeration order.
	Types() []string
	// Fetch resolves the content for one advertised type.
	Fetch(ctx context.Context, mimeType string) ([]byte, error)
}
