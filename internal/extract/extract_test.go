package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsift/clipsift/internal/blob"
	"github.com/clipsift/clipsift/internal/source"
	"github.com/clipsift/clipsift/internal/types"
)

func newExtractor(t *testing.T) (*Extractor, *blob.Store) {
	t.Helper()
	blobs := blob.New(blob.Options{})
	return New(Options{Blobs: blobs}), blobs
}

func TestExtractTransferPayloadOrder(t *testing.T) {
	x, _ := newExtractor(t)
	tr := &source.StaticTransfer{
		SourceLabel: "paste",
		Reps: []source.Rep{
			{MIME: "text/plain", Text: "hello"},
			{MIME: "text/html", Text: "<b>hello</b>"},
		},
	}

	e := x.Extract(context.Background(), tr)
	require.NotNil(t, e)

	assert.Equal(t, types.ShapeTransfer, e.Shape)
	assert.Equal(t, "paste", e.SourceLabel)
	want := []types.Payload{
		types.TextPayload("text/plain", "hello"),
		types.TextPayload("text/html", "<b>hello</b>"),
	}
	if diff := cmp.Diff(want, e.Types); diff != "" {
		t.Errorf("payloads mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, e.Items)
	assert.Empty(t, e.Files)
}

// nameOnlyTransfer declares a representation it cannot produce data for.
type nameOnlyTransfer struct {
	source.StaticTransfer
	phantom string
}

func (t *nameOnlyTransfer) TypeNames() []string {
	return append([]string{t.phantom}, t.StaticTransfer.TypeNames()...)
}

func TestExtractTransferSkipsDatalessTypes(t *testing.T) {
	x, _ := newExtractor(t)
	tr := &nameOnlyTransfer{
		StaticTransfer: source.StaticTransfer{
			Reps: []source.Rep{{MIME: "text/plain", Text: "real"}},
		},
		phantom: "application/x-moz-custom",
	}

	e := x.Extract(context.Background(), tr)
	require.NotNil(t, e)
	require.Len(t, e.Types, 1)
	assert.Equal(t, "text/plain", e.Types[0].MIME)
}

func TestExtractTransferFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("report body"), 0o644))

	x, blobs := newExtractor(t)
	tr, err := source.FileTransfer("drop", []string{path})
	require.NoError(t, err)

	e := x.Extract(context.Background(), tr)
	require.NotNil(t, e)

	require.Len(t, e.Items, 1)
	assert.Equal(t, types.ItemFile, e.Items[0].Kind)
	require.Len(t, e.Files, 1)
	fd := e.Files[0]
	assert.Equal(t, "report.txt", fd.Name)
	assert.Equal(t, int64(11), fd.Size)

	data, err := blobs.Bytes(fd.Ref)
	require.NoError(t, err)
	assert.Equal(t, "report body", string(data))
}

type failingFile struct{}

func (failingFile) Name() string { return "broken.bin" }
func (failingFile) Size() int64  { return 0 }
func (failingFile) MIME() string { return "application/octet-stream" }
func (failingFile) Open() (io.ReadCloser, error) {
	return nil, errors.New("permission denied")
}

func TestExtractTransferOmitsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.txt")
	require.NoError(t, os.WriteFile(path, []byte("fine"), 0o644))

	good, err := source.FileTransfer("drop", []string{path})
	require.NoError(t, err)
	tr := &source.StaticTransfer{
		SourceLabel: "drop",
		ItemList:    append([]source.Item{{Kind: types.ItemFile, MIME: "application/octet-stream", File: failingFile{}}}, good.Items()...),
		FileList:    append([]source.File{failingFile{}}, good.Files()...),
	}

	x, blobs := newExtractor(t)
	e := x.Extract(context.Background(), tr)
	require.NotNil(t, e)

	require.Len(t, e.Items, 1, "unreadable item omitted")
	assert.Equal(t, "ok.txt", e.Items[0].File.Name)
	require.Len(t, e.Files, 1, "unreadable file omitted")
	assert.Equal(t, 2, blobs.Len(), "readable content ingested once per slot")
}

func TestExtractTransferSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	blobs := blob.New(blob.Options{})
	x := New(Options{Blobs: blobs, MaxItemSize: 4})
	tr, err := source.FileTransfer("drop", []string{path})
	require.NoError(t, err)

	e := x.Extract(context.Background(), tr)
	assert.Nil(t, e, "a transfer whose only content is oversized yields nothing")
	assert.Equal(t, 0, blobs.Len(), "oversized ingest must not leak handles")
}

func TestExtractClipboardItems(t *testing.T) {
	x, _ := newExtractor(t)
	set := &source.StaticItemSet{
		SourceLabel: "clipboard",
		List: []source.ClipboardItem{
			&source.StaticItem{
				Order: []string{"text/plain", "text/html"},
				Reps: map[string]source.FetchFunc{
					"text/plain": source.Text("hello"),
					"text/html":  source.Text("<b>hello</b>"),
				},
			},
		},
	}

	e := x.Extract(context.Background(), set)
	require.NotNil(t, e)
	assert.Equal(t, types.ShapeClipboardItems, e.Shape)
	want := []types.Payload{
		types.TextPayload("text/plain", "hello"),
		types.TextPayload("text/html", "<b>hello</b>"),
	}
	if diff := cmp.Diff(want, e.Types); diff != "" {
		t.Errorf("payloads mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractClipboardItemsDelayedFetchKeepsOrder(t *testing.T) {
	x, _ := newExtractor(t)
	set := &source.StaticItemSet{
		List: []source.ClipboardItem{
			&source.StaticItem{
				Order: []string{"text/plain", "text/html"},
				Reps: map[string]source.FetchFunc{
					// The first representation resolves last.
					"text/plain": func(context.Context) ([]byte, error) {
						time.Sleep(30 * time.Millisecond)
						return []byte("slow plain"), nil
					},
					"text/html": source.Text("fast html"),
				},
			},
		},
	}

	e := x.Extract(context.Background(), set)
	require.NotNil(t, e)
	require.Len(t, e.Types, 2)
	assert.Equal(t, "text/plain", e.Types[0].MIME)
	assert.Equal(t, "slow plain", e.Types[0].Text)
	assert.Equal(t, "text/html", e.Types[1].MIME)
	assert.Equal(t, "fast html", e.Types[1].Text)
}

func TestExtractClipboardItemsOmitsFailedFetch(t *testing.T) {
	x, _ := newExtractor(t)
	set := &source.StaticItemSet{
		List: []source.ClipboardItem{
			&source.StaticItem{
				Order: []string{"text/plain", "text/html", "text/csv"},
				Reps: map[string]source.FetchFunc{
					"text/plain": source.Text("kept"),
					"text/html": func(context.Context) ([]byte, error) {
						return nil, errors.New("fetch failed")
					},
					"text/csv": source.Text("also kept"),
				},
			},
		},
	}

	e := x.Extract(context.Background(), set)
	require.NotNil(t, e)
	require.Len(t, e.Types, 2, "only the failed representation is omitted")
	assert.Equal(t, "text/plain", e.Types[0].MIME)
	assert.Equal(t, "text/csv", e.Types[1].MIME)
}

func TestExtractClipboardItemsBinaryGoesToBlobStore(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	x, blobs := newExtractor(t)
	set := &source.StaticItemSet{
		List: []source.ClipboardItem{
			&source.StaticItem{
				Order: []string{"image/png"},
				Reps:  map[string]source.FetchFunc{"image/png": source.Bytes(png)},
			},
		},
	}

	e := x.Extract(context.Background(), set)
	require.NotNil(t, e)
	require.Len(t, e.Types, 1)
	p := e.Types[0]
	assert.Equal(t, types.PayloadFile, p.Kind)
	require.NotNil(t, p.File)
	assert.Equal(t, "image/png", p.File.MIME)
	assert.Equal(t, int64(len(png)), p.File.Size)

	stored, err := blobs.Bytes(p.File.Ref)
	require.NoError(t, err)
	assert.Equal(t, png, stored)
}

func TestExtractClipboardReadFailure(t *testing.T) {
	x, _ := newExtractor(t)
	set := &source.StaticItemSet{Err: errors.New("permission denied")}

	assert.Nil(t, x.Extract(context.Background(), set))
}

func TestExtractNothingToExtract(t *testing.T) {
	x, _ := newExtractor(t)

	t.Run("nil source", func(t *testing.T) {
		assert.Nil(t, x.Extract(context.Background(), nil))
	})
	t.Run("unrecognized shape", func(t *testing.T) {
		assert.Nil(t, x.Extract(context.Background(), "just a string"))
		assert.Nil(t, x.Extract(context.Background(), 42))
	})
	t.Run("empty transfer", func(t *testing.T) {
		assert.Nil(t, x.Extract(context.Background(), &source.StaticTransfer{}))
	})
	t.Run("empty item set", func(t *testing.T) {
		assert.Nil(t, x.Extract(context.Background(), &source.StaticItemSet{}))
	})
}

func TestExtractIsolatedPerCall(t *testing.T) {
	x, _ := newExtractor(t)

	bad := &source.StaticItemSet{Err: errors.New("boom")}
	assert.Nil(t, x.Extract(context.Background(), bad))

	good := &source.StaticTransfer{Reps: []source.Rep{{MIME: "text/plain", Text: "still works"}}}
	e := x.Extract(context.Background(), good)
	require.NotNil(t, e)
	text, ok := e.PrimaryText()
	require.True(t, ok)
	assert.Equal(t, "still works", text)
}
