package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clipsift/clipsift/internal/blob"
	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/history"
	"github.com/clipsift/clipsift/internal/source"
	"github.com/clipsift/clipsift/internal/storage"
	"github.com/clipsift/clipsift/internal/types"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	strategies := map[string]bool{}
	if s.writer != nil {
		for _, st := range s.writer.Strategies() {
			strategies[st.Name()] = st.Available()
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"entries":    s.history.Len(),
		"strategies": strategies,
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries := s.history.Entries()
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryToView(e)
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, ok := s.history.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "no such entry")
		return
	}
	respondJSON(w, http.StatusOK, entryToView(e))
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	if !s.history.Remove(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "no such entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	s.history.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditPayload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload index")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := s.history.EditPayload(id, index, body.Text); err != nil {
		switch {
		case errors.Is(err, history.ErrNoEntry):
			respondError(w, http.StatusNotFound, "no such entry")
		case errors.Is(err, types.ErrPayloadIndex):
			respondError(w, http.StatusNotFound, "no such payload")
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	e, _ := s.history.Get(id)
	respondJSON(w, http.StatusOK, entryToView(e))
}

func (s *Server) handleCopyEntry(w http.ResponseWriter, r *http.Request) {
	if s.writer == nil {
		respondError(w, http.StatusServiceUnavailable, "clipboard writing is not enabled")
		return
	}
	e, ok := s.history.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "no such entry")
		return
	}

	var payload *types.Payload
	for i := range e.Types {
		if e.Types[i].Kind == types.PayloadText {
			payload = &e.Types[i]
			break
		}
	}
	if payload == nil {
		respondError(w, http.StatusBadRequest, "entry has no text payload")
		return
	}

	var body struct {
		Canonical bool `json:"canonical"`
	}
	// The body is optional; absence means a verbatim copy.
	_ = json.NewDecoder(r.Body).Decode(&body)

	text := payload.Text
	if body.Canonical {
		text = classify.Canonicalize(text, payload.MIME)
	}
	structured := classify.PlainTextMIME(payload.MIME) && classify.IsStructured(text)

	if !s.writer.WriteText(r.Context(), text, structured) {
		respondJSON(w, http.StatusBadGateway, map[string]bool{"copied": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"copied": true})
}

func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusServiceUnavailable, "record store is not enabled")
		return
	}
	e, ok := s.history.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "no such entry")
		return
	}

	var body struct {
		Title     string `json:"title"`
		LibraryID string `json:"libraryId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	id, err := s.records.Insert(storage.RecordFromEntry(e, body.Title, body.LibraryID))
	if err != nil {
		s.logger.Error("record insert failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save record")
		return
	}
	rec, err := s.records.Get(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load saved record")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		respondError(w, http.StatusServiceUnavailable, "ingest is not enabled")
		return
	}

	var body struct {
		Label string `json:"label"`
		Types []struct {
			MIME string `json:"mime"`
			Text string `json:"text"`
		} `json:"types"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(body.Types) == 0 {
		respondError(w, http.StatusBadRequest, "types must not be empty")
		return
	}

	label := body.Label
	if label == "" {
		label = "http-ingest"
	}
	reps := make([]source.Rep, len(body.Types))
	for i, t := range body.Types {
		reps[i] = source.Rep{MIME: t.MIME, Text: t.Text}
	}

	e := s.extractor.Extract(r.Context(), &source.StaticTransfer{SourceLabel: label, Reps: reps})
	if e == nil {
		respondError(w, http.StatusBadRequest, "nothing extractable in the request")
		return
	}
	s.history.Record(e)
	view := entryToView(e)
	s.hub.broadcastEntry(view)
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusServiceUnavailable, "record store is not enabled")
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	records, err := s.records.List(r.URL.Query().Get("library"), limit)
	if err != nil {
		s.logger.Error("record list failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []storage.EntryRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		respondError(w, http.StatusServiceUnavailable, "record store is not enabled")
		return
	}
	err := s.records.Delete(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, storage.ErrNoRecord):
		respondError(w, http.StatusNotFound, "no such record")
	case err != nil:
		s.logger.Error("record delete failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete record")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		respondError(w, http.StatusServiceUnavailable, "blob store is not enabled")
		return
	}
	h := blob.Handle(chi.URLParam(r, "handle"))
	rc, err := s.blobs.Open(h)
	if err != nil {
		respondError(w, http.StatusNotFound, "no such blob")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if name, ok := s.blobs.Name(h); ok && name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	if size, ok := s.blobs.Size(h); ok {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Debug("blob stream interrupted", zap.Error(err))
	}
}
