package server

import (
	"time"

	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/types"
)

// entryView is the wire form of a history entry. File payloads carry a blob
// handle the client can download through the blobs route.
type entryView struct {
	ID          string        `json:"id"`
	Shape       string        `json:"shape"`
	SourceLabel string        `json:"sourceLabel"`
	CreatedAt   time.Time     `json:"createdAt"`
	Types       []payloadView `json:"types,omitempty"`
	Items       []itemView    `json:"items,omitempty"`
	Files       []*fileView   `json:"files,omitempty"`
}

type payloadView struct {
	MIME       string    `json:"mime"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text,omitempty"`
	File       *fileView `json:"file,omitempty"`
	Structured bool      `json:"structured,omitempty"`
}

type itemView struct {
	Kind string    `json:"kind"`
	MIME string    `json:"mime"`
	File *fileView `json:"file,omitempty"`
}

type fileView struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	MIME   string `json:"mime"`
	Handle string `json:"handle"`
}

func entryToView(e *types.Entry) entryView {
	v := entryView{
		ID:          e.ID,
		Shape:       string(e.Shape),
		SourceLabel: e.SourceLabel,
		CreatedAt:   e.CreatedAt,
	}
	for _, p := range e.Types {
		pv := payloadView{MIME: p.MIME, Kind: p.Kind.String()}
		if p.Kind == types.PayloadText {
			pv.Text = p.Text
			pv.Structured = classify.PlainTextMIME(p.MIME) && classify.IsStructured(p.Text)
		}
		pv.File = fileToView(p.File)
		v.Types = append(v.Types, pv)
	}
	for _, it := range e.Items {
		v.Items = append(v.Items, itemView{
			Kind: string(it.Kind),
			MIME: it.MIME,
			File: fileToView(it.File),
		})
	}
	for _, fd := range e.Files {
		v.Files = append(v.Files, fileToView(fd))
	}
	return v
}

func fileToView(fd *types.FileDescriptor) *fileView {
	if fd == nil {
		return nil
	}
	return &fileView{
		Name:   fd.Name,
		Size:   fd.Size,
		MIME:   fd.MIME,
		Handle: string(fd.Ref),
	}
}
