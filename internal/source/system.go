package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrEmptyClipboard is returned by a system clipboard read that finds
// nothing to extract.
var ErrEmptyClipboard = errors.New("source: clipboard is empty")

// SystemClipboard reads the OS clipboard as an ItemSet. The portable read
// path is text only, so a capture advertises a single text/plain
// representation.
type SystemClipboard struct {
	readAll func() (string, error)
}

// NewSystemClipboard returns the live system clipboard source.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{readAll: clipboard.ReadAll}
}

func (s *SystemClipboard) Label() string { return "system-clipboard" }

// Read snapshots the current clipboard contents.
func (s *SystemClipboard) Read(ctx context.Context) ([]ClipboardItem, error) {
	text, err := s.readAll()
	if err != nil {
		return nil, fmt.Errorf("read system clipboard: %w", err)
	}
	if text == "" {
		return nil, ErrEmptyClipboard
	}
	return []ClipboardItem{textClipboardItem(text)}, nil
}

// Poll reports the current clipboard text and whether it differs from prev.
// Errors leave prev untouched so a flaky read does not fake a change.
func (s *SystemClipboard) Poll(prev string) (string, bool, error) {
	text, err := s.readAll()
	if err != nil {
		return prev, false, fmt.Errorf("poll system clipboard: %w", err)
	}
	if text == "" || text == prev {
		return prev, false, nil
	}
	return text, true, nil
}

// TextItemSet wraps already-read text as a single-item capture. The monitor
// uses it to extract exactly the text its poll observed.
func TextItemSet(label, text string) ItemSet {
	return &StaticItemSet{
		SourceLabel: label,
		List:        []ClipboardItem{textClipboardItem(text)},
	}
}

type textClipboardItem string

func (t textClipboardItem) Types() []string { return []string{"text/plain"} }

func (t textClipboardItem) Fetch(ctx context.Context, mimeType string) ([]byte, error) {
	if mimeType != "text/plain" {
		return nil, fmt.Errorf("source: no representation for %q", mimeType)
	}
	return []byte(t), nil
}
