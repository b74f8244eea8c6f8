package source

import (
	"context"
	"fmt"
)

// Rep is one declared representation of a static transfer.
type Rep struct {
	MIME string
	Text string
}

// StaticTransfer is an in-memory Transfer. The HTTP ingest surface and
// tests build these directly.
type StaticTransfer struct {
	SourceLabel string
	Reps        []Rep
	ItemList    []Item
	FileList    []File
}

var _ Transfer = (*StaticTransfer)(nil)

func (t *StaticTransfer) Label() string {
	if t.SourceLabel == "" {
		return "transfer"
	}
	return t.SourceLabel
}

func (t *StaticTransfer) TypeNames() []string {
	names := make([]string, len(t.Reps))
	for i, r := range t.Reps {
		names[i] = r.MIME
	}
	return names
}

func (t *StaticTransfer) Data(mimeType string) (string, bool) {
	for _, r := range t.Reps {
		if r.MIME == mimeType {
			return r.Text, true
		}
	}
	return "", false
}

func (t *StaticTransfer) Items() []Item { return t.ItemList }
func (t *StaticTransfer) Files() []File { return t.FileList }

// StaticItemSet is an in-memory ItemSet.
type StaticItemSet struct {
	SourceLabel string
	List        []ClipboardItem
	Err         error
}

var _ ItemSet = (*StaticItemSet)(nil)

func (s *StaticItemSet) Label() string {
	if s.SourceLabel == "" {
		return "clipboard"
	}
	return s.SourceLabel
}

func (s *StaticItemSet) Read(ctx context.Context) ([]ClipboardItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.List, nil
}

// FetchFunc resolves one representation of a StaticItem.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Text is a FetchFunc returning fixed text.
func Text(s string) FetchFunc {
	return func(context.Context) ([]byte, error) { return []byte(s), nil }
}

// Bytes is a FetchFunc returning fixed bytes.
func Bytes(b []byte) FetchFunc {
	return func(context.Context) ([]byte, error) { return b, nil }
}

// StaticItem is a ClipboardItem whose representations are given as fetch
// functions, which lets tests delay or fail individual fetches.
type StaticItem struct {
	// Order lists the advertised MIME types in enumeration order.
	Order []string
	// Reps maps each MIME type to its fetch.
	Reps map[string]FetchFunc
}

var _ ClipboardItem = (*StaticItem)(nil)

func (it *StaticItem) Types() []string { return it.Order }

func (it *StaticItem) Fetch(ctx context.Context, mimeType string) ([]byte, error) {
	fn, ok := it.Reps[mimeType]
	if !ok {
		return nil, fmt.Errorf("source: no representation for %q", mimeType)
	}
	return fn(ctx)
}
