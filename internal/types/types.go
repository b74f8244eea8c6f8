// Package types defines the normalized entry model produced by extraction
// and shared by history, rendering, persistence and the write-back path.
package types

import (
	"github.com/clipsift/clipsift/internal/blob"
)

// PayloadKind discriminates the two payload variants.
type PayloadKind int

const (
	// PayloadText carries decoded text for one MIME representation.
	PayloadText PayloadKind = iota
	// PayloadFile carries a descriptor for binary content.
	PayloadFile
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadFile:
		return "file"
	default:
		return "unknown"
	}
}

// Payload is one typed representation of a capture. Exactly one of Text and
// File is populated, selected by Kind.
type Payload struct {
	MIME string          `json:"mime"`
	Kind PayloadKind     `json:"kind"`
	Text string          `json:"text,omitempty"`
	File *FileDescriptor `json:"file,omitempty"`
}

// TextPayload builds a text representation.
func TextPayload(mime, text string) Payload {
	return Payload{MIME: mime, Kind: PayloadText, Text: text}
}

// FilePayload builds a binary representation.
func FilePayload(mime string, fd *FileDescriptor) Payload {
	return Payload{MIME: mime, Kind: PayloadFile, File: fd}
}

// FileDescriptor describes binary content without exposing its bytes. Ref
// dereferences through the blob store and must be released when the owning
// entry is destroyed. Descriptors are never mutated after construction.
type FileDescriptor struct {
	Name string      `json:"name"`
	Size int64       `json:"size"`
	MIME string      `json:"mime"`
	Ref  blob.Handle `json:"ref"`
}

// ItemKind discriminates transfer item flavors.
type ItemKind string

const (
	ItemString ItemKind = "string"
	ItemFile   ItemKind = "file"
)

// TransferItem mirrors one item of a transfer-shaped capture. String items
// carry no eagerly read text; file items point at ingested content.
type TransferItem struct {
	Kind ItemKind        `json:"kind"`
	MIME string          `json:"mime"`
	File *FileDescriptor `json:"file,omitempty"`
}

// Shape tells which capture flavor produced an entry.
type Shape string

const (
	// ShapeTransfer marks paste/drop style captures. All three entry
	// sequences may be populated.
	ShapeTransfer Shape = "transfer"
	// ShapeClipboardItems marks async clipboard reads. Only Types is
	// populated.
	ShapeClipboardItems Shape = "clipboard-items"
)

// ContentKind is a coarse classification of textual content, used for
// display and for saved record metadata.
type ContentKind string

const (
	KindText     ContentKind = "text"
	KindURL      ContentKind = "url"
	KindFilePath ContentKind = "filepath"
	KindJSON     ContentKind = "json"
	KindHTML     ContentKind = "html"
	KindImage    ContentKind = "image"
	KindFiles    ContentKind = "files"
)
