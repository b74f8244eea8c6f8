package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsift/clipsift/internal/types"
)

func TestStaticTransfer(t *testing.T) {
	tr := &StaticTransfer{
		SourceLabel: "paste",
		Reps: []Rep{
			{MIME: "text/plain", Text: "hello"},
			{MIME: "text/html", Text: "<b>hello</b>"},
		},
	}

	assert.Equal(t, "paste", tr.Label())
	assert.Equal(t, []string{"text/plain", "text/html"}, tr.TypeNames())

	text, ok := tr.Data("text/html")
	require.True(t, ok)
	assert.Equal(t, "<b>hello</b>", text)

	_, ok = tr.Data("image/png")
	assert.False(t, ok)
}

func TestStdinTransfer(t *testing.T) {
	tr, err := StdinTransfer("", "", strings.NewReader("piped in"))
	require.NoError(t, err)

	assert.Equal(t, "stdin", tr.Label())
	assert.Equal(t, []string{"text/plain"}, tr.TypeNames())
	text, ok := tr.Data("text/plain")
	require.True(t, ok)
	assert.Equal(t, "piped in", text)
}

func TestFileTransfer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0o644))

	tr, err := FileTransfer("", []string{path})
	require.NoError(t, err)

	assert.Equal(t, "drop", tr.Label())
	items := tr.Items()
	require.Len(t, items, 1)
	assert.Equal(t, types.ItemFile, items[0].Kind)
	assert.Contains(t, items[0].MIME, "text/plain")

	files := tr.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "note.txt", files[0].Name())
	assert.Equal(t, int64(9), files[0].Size())

	rc, err := files[0].Open()
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "file body", string(body))
}

func TestFileTransferMissingPath(t *testing.T) {
	_, err := FileTransfer("", []string{filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}

func TestFileTransferRejectsDirectory(t *testing.T) {
	_, err := FileTransfer("", []string{t.TempDir()})
	assert.Error(t, err)
}

func TestStaticItemSet(t *testing.T) {
	item := &StaticItem{
		Order: []string{"text/plain"},
		Reps:  map[string]FetchFunc{"text/plain": Text("hi")},
	}
	set := &StaticItemSet{List: []ClipboardItem{item}}

	items, err := set.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	data, err := items[0].Fetch(context.Background(), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	_, err = items[0].Fetch(context.Background(), "image/png")
	assert.Error(t, err)
}

func TestStaticItemSetReadError(t *testing.T) {
	boom := errors.New("denied")
	set := &StaticItemSet{Err: boom}

	_, err := set.Read(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSystemClipboardRead(t *testing.T) {
	sys := &SystemClipboard{readAll: func() (string, error) { return "copied text", nil }}

	items, err := sys.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"text/plain"}, items[0].Types())

	data, err := items[0].Fetch(context.Background(), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "copied text", string(data))
}

func TestSystemClipboardReadEmpty(t *testing.T) {
	sys := &SystemClipboard{readAll: func() (string, error) { return "", nil }}

	_, err := sys.Read(context.Background())
	assert.ErrorIs(t, err, ErrEmptyClipboard)
}

func TestSystemClipboardPoll(t *testing.T) {
	next := "fresh"
	sys := &SystemClipboard{readAll: func() (string, error) { return next, nil }}

	text, changed, err := sys.Poll("stale")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "fresh", text)

	text, changed, err = sys.Poll("fresh")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "fresh", text)

	t.Run("error keeps previous", func(t *testing.T) {
		sys := &SystemClipboard{readAll: func() (string, error) { return "", errors.New("no display") }}
		text, changed, err := sys.Poll("kept")
		assert.Error(t, err)
		assert.False(t, changed)
		assert.Equal(t, "kept", text)
	})
}
