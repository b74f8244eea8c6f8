package types

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clipsift/clipsift/internal/blob"
)

var (
	// ErrPayloadIndex is returned for edits addressing a payload that does
	// not exist.
	ErrPayloadIndex = errors.New("types: payload index out of range")
	// ErrNotTextPayload is returned for edits addressing a file payload.
	ErrNotTextPayload = errors.New("types: payload is not text")
)

// Entry is one normalized capture. The Types, Items and Files sequences
// preserve the enumeration order of the capture they came from. An entry is
// immutable after construction except for in-place payload text edits, which
// keep its identity (ID, CreatedAt) intact.
type Entry struct {
	ID          string            `json:"id"`
	Shape       Shape             `json:"shape"`
	Types       []Payload         `json:"types,omitempty"`
	Items       []TransferItem    `json:"items,omitempty"`
	Files       []*FileDescriptor `json:"files,omitempty"`
	SourceLabel string            `json:"sourceLabel"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// NewEntry allocates an entry with a fresh identity.
func NewEntry(shape Shape, sourceLabel string) *Entry {
	return &Entry{
		ID:          uuid.New().String(),
		Shape:       shape,
		SourceLabel: sourceLabel,
		CreatedAt:   time.Now(),
	}
}

// Empty reports whether the entry carries nothing. Extraction never hands
// out empty entries; it returns nil instead.
func (e *Entry) Empty() bool {
	return len(e.Types) == 0 && len(e.Items) == 0 && len(e.Files) == 0
}

// EditPayloadText replaces the text of payload i in place. This is the only
// permitted mutation of a recorded entry.
func (e *Entry) EditPayloadText(i int, text string) error {
	if i < 0 || i >= len(e.Types) {
		return ErrPayloadIndex
	}
	if e.Types[i].Kind != PayloadText {
		return ErrNotTextPayload
	}
	e.Types[i].Text = text
	return nil
}

// PrimaryText returns the first text payload.
func (e *Entry) PrimaryText() (string, bool) {
	for _, p := range e.Types {
		if p.Kind == PayloadText {
			return p.Text, true
		}
	}
	return "", false
}

// Handles collects every blob handle reachable from the entry, each once.
// Destroying the entry means releasing these.
func (e *Entry) Handles() []blob.Handle {
	seen := make(map[blob.Handle]struct{})
	var out []blob.Handle
	add := func(fd *FileDescriptor) {
		if fd == nil || fd.Ref == "" {
			return
		}
		if _, ok := seen[fd.Ref]; ok {
			return
		}
		seen[fd.Ref] = struct{}{}
		out = append(out, fd.Ref)
	}
	for _, p := range e.Types {
		add(p.File)
	}
	for _, it := range e.Items {
		add(it.File)
	}
	for _, fd := range e.Files {
		add(fd)
	}
	return out
}
