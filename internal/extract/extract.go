// Package extract normalizes heterogeneous captures into entries.
//
// Extraction fails closed: a capture that yields nothing, is of an unknown
// shape, or fails outright produces a nil entry, never an error or a panic.
// Individual representations that cannot be resolved are omitted without
// affecting their siblings.
package extract

import (
	"context"
	"fmt"
	"io"
	"mime"
	"sync"

	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/blob"
	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/source"
	"github.com/clipsift/clipsift/internal/types"
)

// DefaultMaxItemSize caps a single ingested representation or file.
const DefaultMaxItemSize = 32 << 20

// Options configures an Extractor.
type Options struct {
	Blobs       *blob.Store
	Logger      *zap.Logger
	MaxItemSize int64
}

// Extractor turns capture sources into normalized entries, ingesting binary
// content into the blob store as it goes.
type Extractor struct {
	blobs       *blob.Store
	logger      *zap.Logger
	maxItemSize int64
}

// New builds an Extractor. A nil blob store panics early rather than on the
// first binary capture.
func New(opts Options) *Extractor {
	if opts.Blobs == nil {
		panic("extract: Options.Blobs is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSize := opts.MaxItemSize
	if maxSize <= 0 {
		maxSize = DefaultMaxItemSize
	}
	return &Extractor{blobs: opts.Blobs, logger: logger, maxItemSize: maxSize}
}

// Extract normalizes one capture. It recognizes source.Transfer and
// source.ItemSet; anything else, including nil, yields nil. A nil return
// means "nothing to extract", not an error.
func (x *Extractor) Extract(ctx context.Context, src any) *types.Entry {
	switch s := src.(type) {
	case source.Transfer:
		return x.fromTransfer(s)
	case source.ItemSet:
		return x.fromItemSet(ctx, s)
	case nil:
		return nil
	default:
		x.logger.Debug("unrecognized capture source",
			zap.String("go_type", fmt.Sprintf("%T", src)))
		return nil
	}
}

func (x *Extractor) fromTransfer(t source.Transfer) *types.Entry {
	e := types.NewEntry(types.ShapeTransfer, t.Label())

	for _, name := range t.TypeNames() {
		text, ok := t.Data(name)
		if !ok {
			continue
		}
		e.Types = append(e.Types, types.TextPayload(name, text))
	}

	for _, it := range t.Items() {
		switch it.Kind {
		case types.ItemString:
			e.Items = append(e.Items, types.TransferItem{Kind: types.ItemString, MIME: it.MIME})
		case types.ItemFile:
			fd := x.ingestFile(it.File)
			if fd == nil {
				continue
			}
			e.Items = append(e.Items, types.TransferItem{Kind: types.ItemFile, MIME: it.MIME, File: fd})
		default:
			x.logger.Debug("skipping item of unknown kind", zap.String("kind", string(it.Kind)))
		}
	}

	for _, f := range t.Files() {
		fd := x.ingestFile(f)
		if fd == nil {
			continue
		}
		e.Files = append(e.Files, fd)
	}

	if e.Empty() {
		return nil
	}
	return e
}

// ingestFile reads attached content into the blob store. Failures skip the
// file and return nil; the rest of the capture is unaffected.
func (x *Extractor) ingestFile(f source.File) *types.FileDescriptor {
	if f == nil {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		x.logger.Warn("skipping unreadable file",
			zap.String("name", f.Name()), zap.Error(err))
		return nil
	}
	defer rc.Close()

	h, size, err := x.blobs.PutReader(f.Name(), io.LimitReader(rc, x.maxItemSize+1))
	if err != nil {
		x.logger.Warn("skipping file, ingest failed",
			zap.String("name", f.Name()), zap.Error(err))
		return nil
	}
	if size > x.maxItemSize {
		x.blobs.Release(h)
		x.logger.Warn("skipping file over size limit",
			zap.String("name", f.Name()), zap.Int64("limit", x.maxItemSize))
		return nil
	}

	mt := f.MIME()
	if mt == "" {
		mt = "application/octet-stream"
	}
	return &types.FileDescriptor{Name: f.Name(), Size: size, MIME: mt, Ref: h}
}

// fetchSlot is one (item, MIME) pair. Slots are created in enumeration
// order and filled concurrently, so joining them positionally preserves
// that order no matter which fetch finishes first.
type fetchSlot struct {
	item int
	mime string
	data []byte
	err  error
}

func (x *Extractor) fromItemSet(ctx context.Context, s source.ItemSet) *types.Entry {
	items, err := s.Read(ctx)
	if err != nil {
		x.logger.Debug("clipboard read failed",
			zap.String("source", s.Label()), zap.Error(err))
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	var slots []fetchSlot
	for i, it := range items {
		for _, mt := range it.Types() {
			slots = append(slots, fetchSlot{item: i, mime: mt})
		}
	}

	var wg sync.WaitGroup
	for i := range slots {
		wg.Add(1)
		go func(slot *fetchSlot) {
			defer wg.Done()
			slot.data, slot.err = items[slot.item].Fetch(ctx, slot.mime)
		}(&slots[i])
	}
	wg.Wait()

	e := types.NewEntry(types.ShapeClipboardItems, s.Label())
	files := 0
	for _, slot := range slots {
		if slot.err != nil {
			x.logger.Debug("representation omitted",
				zap.String("mime", slot.mime), zap.Error(slot.err))
			continue
		}
		if int64(len(slot.data)) > x.maxItemSize {
			x.logger.Warn("representation over size limit",
				zap.String("mime", slot.mime), zap.Int("size", len(slot.data)))
			continue
		}
		if classify.TextualMIME(slot.mime) {
			e.Types = append(e.Types, types.TextPayload(slot.mime, string(slot.data)))
			continue
		}
		files++
		name := synthesizeName(files, slot.mime)
		h := x.blobs.Put(name, slot.data)
		e.Types = append(e.Types, types.FilePayload(slot.mime, &types.FileDescriptor{
			Name: name,
			Size: int64(len(slot.data)),
			MIME: slot.mime,
			Ref:  h,
		}))
	}

	if e.Empty() {
		return nil
	}
	return e
}

// synthesizeName names clipboard binary content, which arrives nameless.
func synthesizeName(n int, mimeType string) string {
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("clipboard-%d%s", n, ext)
}
