package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsift/clipsift/internal/blob"
	"github.com/clipsift/clipsift/internal/clipboard"
	"github.com/clipsift/clipsift/internal/extract"
	"github.com/clipsift/clipsift/internal/history"
	"github.com/clipsift/clipsift/internal/storage"
	"github.com/clipsift/clipsift/internal/types"
)

type stubStrategy struct {
	name       string
	err        error
	text       string
	structured bool
	calls      int
}

func (s *stubStrategy) Name() string    { return s.name }
func (s *stubStrategy) Available() bool { return true }

func (s *stubStrategy) Write(ctx context.Context, text string, structured bool) error {
	s.calls++
	s.text = text
	s.structured = structured
	return s.err
}

func newTestServer(t *testing.T, opts ...func(*Options)) (*Server, *history.Buffer) {
	t.Helper()
	blobs := blob.New(blob.Options{})
	buf := history.New(history.Options{Blobs: blobs})
	o := Options{
		History:   buf,
		Extractor: extract.New(extract.Options{Blobs: blobs}),
		Blobs:     blobs,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o), buf
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) entryView {
	t.Helper()
	var v entryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func ingestText(t *testing.T, h http.Handler, text string) entryView {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/ingest", map[string]any{
		"types": []map[string]string{{"mime": "text/plain", "text": text}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeView(t, rec)
}

func TestStatusRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.EqualValues(t, 0, status["entries"])
}

func TestIngestThenList(t *testing.T) {
	srv, buf := newTestServer(t)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/ingest", map[string]any{
		"label": "webhook",
		"types": []map[string]string{
			{"mime": "text/plain", "text": `{"a":1}`},
			{"mime": "text/html", "text": "<b>a</b>"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeView(t, rec)
	assert.Equal(t, "webhook", created.SourceLabel)
	require.Len(t, created.Types, 2)
	assert.Equal(t, "text/plain", created.Types[0].MIME)
	assert.True(t, created.Types[0].Structured, "plain JSON text is flagged")
	assert.Equal(t, "text/html", created.Types[1].MIME)
	assert.False(t, created.Types[1].Structured)

	assert.Equal(t, 1, buf.Len())

	rec = doJSON(t, h, http.MethodGet, "/api/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []entryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = doJSON(t, h, http.MethodGet, "/api/entries/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeView(t, rec).ID)
}

func TestIngestValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("{nope"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no representations", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/ingest", map[string]any{"label": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEntriesNewestFirst(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	first := ingestText(t, h, "first")
	second := ingestText(t, h, "second")

	rec := doJSON(t, h, http.MethodGet, "/api/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []entryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
}

func TestEditPayload(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	created := ingestText(t, h, "before")

	rec := doJSON(t, h, http.MethodPatch, "/api/entries/"+created.ID+"/payloads/0",
		map[string]string{"text": "after"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	edited := decodeView(t, rec)
	assert.Equal(t, created.ID, edited.ID, "edit keeps entry identity")
	require.Len(t, edited.Types, 1)
	assert.Equal(t, "after", edited.Types[0].Text)

	t.Run("payload out of range", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/entries/"+created.ID+"/payloads/9",
			map[string]string{"text": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown entry", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/entries/nope/payloads/0",
			map[string]string{"text": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad index", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPatch, "/api/entries/"+created.ID+"/payloads/abc",
			map[string]string{"text": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCopyEntry(t *testing.T) {
	stub := &stubStrategy{name: "stub"}
	srv, _ := newTestServer(t, func(o *Options) {
		o.Writer = clipboard.NewWithStrategies(nil, stub)
	})
	h := srv.Handler()
	created := ingestText(t, h, `{"b":2,"a":1}`)

	rec := doJSON(t, h, http.MethodPost, "/api/entries/"+created.ID+"/copy",
		map[string]bool{"canonical": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"copied":true}`, rec.Body.String())

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}", stub.text)
	assert.True(t, stub.structured)

	t.Run("verbatim without canonical", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/entries/"+created.ID+"/copy", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"b":2,"a":1}`, stub.text)
	})

	t.Run("all strategies fail", func(t *testing.T) {
		stub.err = errors.New("denied")
		rec := doJSON(t, h, http.MethodPost, "/api/entries/"+created.ID+"/copy", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"copied":false}`, rec.Body.String())
		stub.err = nil
	})

	t.Run("unknown entry", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/entries/nope/copy", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCopyWithoutWriter(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	created := ingestText(t, h, "text")

	rec := doJSON(t, h, http.MethodPost, "/api/entries/"+created.ID+"/copy", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSaveAndRecords(t *testing.T) {
	store, err := storage.New(storage.Options{
		DBPath: filepath.Join(t.TempDir(), "records.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, _ := newTestServer(t, func(o *Options) { o.Records = store })
	h := srv.Handler()
	created := ingestText(t, h, "https://example.com/page")

	rec := doJSON(t, h, http.MethodPost, "/api/entries/"+created.ID+"/save",
		map[string]string{"title": "bookmark", "libraryId": "links"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var saved storage.EntryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "bookmark", saved.Title)
	assert.Equal(t, "https://example.com/page", saved.Content)
	assert.Equal(t, "url", saved.ContentType)
	assert.Equal(t, "links", saved.LibraryID)

	rec = doJSON(t, h, http.MethodGet, "/api/records?library=links", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []storage.EntryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, saved.ID, records[0].ID)

	rec = doJSON(t, h, http.MethodDelete, "/api/records/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/records/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	created := ingestText(t, h, "text")

	rec := doJSON(t, h, http.MethodPost, "/api/entries/"+created.ID+"/save", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRemoveAndClear(t *testing.T) {
	srv, buf := newTestServer(t)
	h := srv.Handler()

	first := ingestText(t, h, "one")
	ingestText(t, h, "two")

	rec := doJSON(t, h, http.MethodDelete, "/api/entries/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, buf.Len())

	rec = doJSON(t, h, http.MethodDelete, "/api/entries/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/entries", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, buf.Len())
}

func TestBlobRoute(t *testing.T) {
	blobs := blob.New(blob.Options{})
	srv, _ := newTestServer(t, func(o *Options) { o.Blobs = blobs })
	h := srv.Handler()

	handle := blobs.Put("shot.png", []byte{0x89, 'P', 'N', 'G'})

	rec := doJSON(t, h, http.MethodGet, "/api/blobs/"+string(handle), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shot.png")

	t.Run("unknown handle", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/blobs/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWebsocketFeed(t *testing.T) {
	srv, _ := newTestServer(t)
	go srv.hub.run()
	t.Cleanup(srv.hub.stop)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	e := types.NewEntry(types.ShapeClipboardItems, "test")
	e.Types = []types.Payload{types.TextPayload("text/plain", "pushed")}

	got := make(chan []byte, 1)
	go func() {
		if _, raw, err := conn.ReadMessage(); err == nil {
			got <- raw
		}
	}()

	// Registration races the first broadcast, so keep pushing until the
	// reader sees one.
	var raw []byte
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(5 * time.Second)
	srv.HandleEntry(e)
	for raw == nil {
		select {
		case raw = <-got:
		case <-ticker.C:
			srv.HandleEntry(e)
		case <-timeout:
			t.Fatal("no websocket message arrived")
		}
	}

	var msg wsMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "entry", msg.Type)
	assert.Equal(t, e.ID, msg.Payload.ID)
	require.Len(t, msg.Payload.Types, 1)
	assert.Equal(t, "pushed", msg.Payload.Types[0].Text)
}

func TestBroadcastWithoutRunningHubDoesNotBlock(t *testing.T) {
	srv, _ := newTestServer(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		e := types.NewEntry(types.ShapeClipboardItems, "test")
		e.Types = []types.Payload{types.TextPayload("text/plain", "x")}
		for i := 0; i < 100; i++ {
			srv.HandleEntry(e)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked without a hub goroutine")
	}
}
