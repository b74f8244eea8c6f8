// Package storage persists saved clipboard records. The in-memory history
// buffer is ephemeral; a record written here survives restarts.
package storage

import (
	"strings"
	"time"

	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/types"
)

// EntryRecord is the persisted form of a saved capture.
type EntryRecord struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	ContentType       string    `json:"contentType"`
	ScreenshotDataURI string    `json:"screenshotDataUri,omitempty"`
	LibraryID         string    `json:"libraryId"`
	SavedAt           time.Time `json:"savedAt"`
}

// RecordStore is the persistence contract the CLI and server save through.
type RecordStore interface {
	Insert(rec EntryRecord) (string, error)
	Update(rec EntryRecord) error
	Delete(id string) error
	Get(id string) (EntryRecord, error)
	List(libraryID string, limit int) ([]EntryRecord, error)
	Close() error
}

const defaultTitleWidth = 80

// RecordFromEntry builds the save payload for a capture. Content is the
// primary text; textless captures fall back to their file names. An empty
// title derives from the content.
func RecordFromEntry(e *types.Entry, title, libraryID string) EntryRecord {
	rec := EntryRecord{Title: title, LibraryID: libraryID}
	if text, ok := e.PrimaryText(); ok {
		rec.Content = text
		rec.ContentType = string(classify.DetectKind(text))
	} else if names := fileNames(e); len(names) > 0 {
		rec.Content = strings.Join(names, "\n")
		rec.ContentType = string(types.KindFiles)
	}
	if rec.Title == "" {
		rec.Title = classify.Title(rec.Content, defaultTitleWidth)
	}
	return rec
}

func fileNames(e *types.Entry) []string {
	var names []string
	for _, fd := range e.Files {
		names = append(names, fd.Name)
	}
	if len(names) > 0 {
		return names
	}
	for _, it := range e.Items {
		if it.File != nil {
			names = append(names, it.File.Name)
		}
	}
	for _, p := range e.Types {
		if p.File != nil {
			names = append(names, p.File.Name)
		}
	}
	return names
}
