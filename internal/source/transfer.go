package source

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/clipsift/clipsift/internal/types"
)

// StdinTransfer drains r into a single-representation transfer. It is the
// paste analogue for piped input.
func StdinTransfer(label, mimeType string, r io.Reader) (Transfer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}
	if label == "" {
		label = "stdin"
	}
	return &StaticTransfer{
		SourceLabel: label,
		Reps:        []Rep{{MIME: mimeType, Text: string(data)}},
	}, nil
}

// FileTransfer exposes files on disk as a drop-shaped transfer: one file
// item plus one file-list slot per path, in argument order. Paths are
// checked here; unreadable content surfaces later when the extractor opens
// them.
func FileTransfer(label string, paths []string) (Transfer, error) {
	if label == "" {
		label = "drop"
	}
	t := &StaticTransfer{SourceLabel: label}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		f := &diskFile{
			path: path,
			name: filepath.Base(path),
			size: info.Size(),
			mime: mimeForPath(path),
		}
		t.ItemList = append(t.ItemList, Item{Kind: types.ItemFile, MIME: f.mime, File: f})
		t.FileList = append(t.FileList, f)
	}
	return t, nil
}

func mimeForPath(path string) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

type diskFile struct {
	path string
	name string
	size int64
	mime string
}

var _ File = (*diskFile)(nil)

func (f *diskFile) Name() string { return f.name }
func (f *diskFile) Size() int64  { return f.size }
func (f *diskFile) MIME() string { return f.mime }

func (f *diskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
