package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsift/clipsift/internal/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := New(Options{DBPath: filepath.Join(t.TempDir(), "records.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertAndGet(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Insert(EntryRecord{
		Title:       "snippet",
		Content:     "hello world",
		ContentType: "text",
		LibraryID:   "default",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "snippet", rec.Title)
	assert.Equal(t, "hello world", rec.Content)
	assert.Equal(t, "text", rec.ContentType)
	assert.Equal(t, "default", rec.LibraryID)
	assert.WithinDuration(t, time.Now(), rec.SavedAt, 2*time.Second)
}

func TestInsertKeepsProvidedIdentity(t *testing.T) {
	store := newTestStore(t)

	savedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := store.Insert(EntryRecord{ID: "fixed-id", Content: "x", SavedAt: savedAt})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	rec, err := store.Get("fixed-id")
	require.NoError(t, err)
	assert.True(t, rec.SavedAt.Equal(savedAt))
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Insert(EntryRecord{Title: "before", Content: "x"})
	require.NoError(t, err)
	inserted, err := store.Get(id)
	require.NoError(t, err)

	err = store.Update(EntryRecord{ID: id, Title: "after", Content: "y"})
	require.NoError(t, err)

	rec, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "after", rec.Title)
	assert.Equal(t, "y", rec.Content)
	assert.True(t, rec.SavedAt.Equal(inserted.SavedAt), "zero SavedAt keeps the stored one")

	t.Run("unknown id", func(t *testing.T) {
		err := store.Update(EntryRecord{ID: "missing", Title: "x"})
		assert.ErrorIs(t, err, ErrNoRecord)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.ErrorIs(t, store.Update(EntryRecord{Title: "x"}), ErrNoRecord)
	})
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Insert(EntryRecord{Content: "x"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(id))
	_, err = store.Get(id)
	assert.ErrorIs(t, err, ErrNoRecord)

	assert.ErrorIs(t, store.Delete(id), ErrNoRecord)
}

func TestList(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []EntryRecord{
		{ID: "a", Content: "oldest", LibraryID: "work"},
		{ID: "b", Content: "middle", LibraryID: "play"},
		{ID: "c", Content: "newest", LibraryID: "work"},
	} {
		rec.SavedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := store.Insert(rec)
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := store.List("", 0)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "c", records[0].ID)
		assert.Equal(t, "b", records[1].ID)
		assert.Equal(t, "a", records[2].ID)
	})

	t.Run("library filter", func(t *testing.T) {
		records, err := store.List("work", 0)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "c", records[0].ID)
		assert.Equal(t, "a", records[1].ID)
	})

	t.Run("limit", func(t *testing.T) {
		records, err := store.List("", 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "c", records[0].ID)
	})
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	store, err := New(Options{DBPath: path})
	require.NoError(t, err)
	id, err := store.Insert(EntryRecord{Content: "persisted"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(Options{DBPath: path})
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "persisted", rec.Content)
}

func TestRecordFromEntry(t *testing.T) {
	t.Run("text content", func(t *testing.T) {
		e := types.NewEntry(types.ShapeClipboardItems, "clipboard")
		e.Types = []types.Payload{types.TextPayload("text/plain", "some note\nsecond line")}

		rec := RecordFromEntry(e, "", "inbox")
		assert.Equal(t, "some note\nsecond line", rec.Content)
		assert.Equal(t, "text", rec.ContentType)
		assert.Equal(t, "some note", rec.Title, "title derives from the first line")
		assert.Equal(t, "inbox", rec.LibraryID)
	})

	t.Run("explicit title kept", func(t *testing.T) {
		e := types.NewEntry(types.ShapeClipboardItems, "clipboard")
		e.Types = []types.Payload{types.TextPayload("text/plain", "body")}

		rec := RecordFromEntry(e, "my title", "")
		assert.Equal(t, "my title", rec.Title)
	})

	t.Run("url detected", func(t *testing.T) {
		e := types.NewEntry(types.ShapeClipboardItems, "clipboard")
		e.Types = []types.Payload{types.TextPayload("text/plain", "https://example.com/a")}

		rec := RecordFromEntry(e, "", "")
		assert.Equal(t, "url", rec.ContentType)
	})

	t.Run("file names for textless entries", func(t *testing.T) {
		e := types.NewEntry(types.ShapeTransfer, "drop")
		e.Files = []*types.FileDescriptor{
			{Name: "a.png", Size: 10},
			{Name: "b.png", Size: 20},
		}

		rec := RecordFromEntry(e, "", "")
		assert.Equal(t, "a.png\nb.png", rec.Content)
		assert.Equal(t, "files", rec.ContentType)
		assert.Equal(t, "a.png", rec.Title)
	})
}
