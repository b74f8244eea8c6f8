package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clipsift/clipsift/internal/storage"
	"github.com/clipsift/clipsift/internal/types"
)

// daemonClient talks to a running clipsift daemon over its HTTP interface.
type daemonClient struct {
	base string
	http *http.Client
}

func newDaemonClient(addr string) *daemonClient {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &daemonClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// daemonAddr resolves the --addr flag against the configured listen address.
func daemonAddr(flagAddr string) string {
	if flagAddr != "" {
		return flagAddr
	}
	return cfg.Server.Addr
}

// remoteEntry mirrors the daemon's wire form of a history entry.
type remoteEntry struct {
	ID          string          `json:"id"`
	Shape       string          `json:"shape"`
	SourceLabel string          `json:"sourceLabel"`
	CreatedAt   time.Time       `json:"createdAt"`
	Types       []remotePayload `json:"types,omitempty"`
	Items       []remoteItem    `json:"items,omitempty"`
	Files       []*remoteFile   `json:"files,omitempty"`
}

type remotePayload struct {
	MIME       string      `json:"mime"`
	Kind       string      `json:"kind"`
	Text       string      `json:"text,omitempty"`
	File       *remoteFile `json:"file,omitempty"`
	Structured bool        `json:"structured,omitempty"`
}

type remoteItem struct {
	Kind string      `json:"kind"`
	MIME string      `json:"mime"`
	File *remoteFile `json:"file,omitempty"`
}

type remoteFile struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	MIME   string `json:"mime"`
	Handle string `json:"handle"`
}

// toEntry rebuilds a local entry for rendering. Blob content stays behind
// on the daemon; file payloads keep name, size and MIME only.
func (re remoteEntry) toEntry() *types.Entry {
	e := &types.Entry{
		ID:          re.ID,
		Shape:       types.Shape(re.Shape),
		SourceLabel: re.SourceLabel,
		CreatedAt:   re.CreatedAt,
	}
	for _, p := range re.Types {
		if p.File != nil {
			e.Types = append(e.Types, types.FilePayload(p.MIME, p.File.descriptor()))
			continue
		}
		e.Types = append(e.Types, types.TextPayload(p.MIME, p.Text))
	}
	for _, it := range re.Items {
		e.Items = append(e.Items, types.TransferItem{
			Kind: types.ItemKind(it.Kind),
			MIME: it.MIME,
			File: it.File.descriptor(),
		})
	}
	for _, f := range re.Files {
		e.Files = append(e.Files, f.descriptor())
	}
	return e
}

func (f *remoteFile) descriptor() *types.FileDescriptor {
	if f == nil {
		return nil
	}
	return &types.FileDescriptor{Name: f.Name, Size: f.Size, MIME: f.MIME}
}

func (c *daemonClient) listEntries() ([]remoteEntry, error) {
	var entries []remoteEntry
	if err := c.do(http.MethodGet, "/api/entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *daemonClient) getEntry(id string) (remoteEntry, error) {
	var entry remoteEntry
	err := c.do(http.MethodGet, "/api/entries/"+url.PathEscape(id), nil, &entry)
	return entry, err
}

func (c *daemonClient) removeEntry(id string) error {
	return c.do(http.MethodDelete, "/api/entries/"+url.PathEscape(id), nil, nil)
}

func (c *daemonClient) clearEntries() error {
	return c.do(http.MethodDelete, "/api/entries", nil, nil)
}

func (c *daemonClient) saveEntry(id, title, library string) (storage.EntryRecord, error) {
	body := map[string]string{"title": title, "libraryId": library}
	var rec storage.EntryRecord
	err := c.do(http.MethodPost, "/api/entries/"+url.PathEscape(id)+"/save", body, &rec)
	return rec, err
}

func (c *daemonClient) listRecords(library string, limit int) ([]storage.EntryRecord, error) {
	q := url.Values{}
	if library != "" {
		q.Set("library", library)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/records"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var recs []storage.EntryRecord
	if err := c.do(http.MethodGet, path, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// do issues a request and decodes the JSON response into out when out is
// non-nil. Error responses carry {"error": "..."}; surface that message.
func (c *daemonClient) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach daemon at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon error: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon error: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
