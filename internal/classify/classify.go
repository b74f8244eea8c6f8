// Package classify holds the content classifier and formatter: structured
// content detection, canonical pretty-printing and coarse kind sniffing.
// Everything here is a pure function over its input.
package classify

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/clipsift/clipsift/internal/types"
)

// IsStructured reports whether s parses as structured (JSON) data. Any
// parse failure means false; it never errors.
func IsStructured(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	var v any
	return json.Unmarshal([]byte(t), &v) == nil
}

// Canonicalize returns the canonical pretty-printed form of text when its
// MIME type denotes plain text and the text is structured: two-space
// indentation, object keys sorted. Everything else passes through
// unchanged. The function is idempotent.
func Canonicalize(text, mimeType string) string {
	if !PlainTextMIME(mimeType) {
		return text
	}
	t := strings.TrimSpace(text)
	if t == "" {
		return text
	}
	var v any
	if err := json.Unmarshal([]byte(t), &v); err != nil {
		return text
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return text
	}
	return string(out)
}

// PlainTextMIME reports whether mimeType denotes plain text. The empty
// string counts: captures without a declared type are treated as plain text.
func PlainTextMIME(mimeType string) bool {
	if mimeType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(mimeType), "text/plain")
	}
	return mt == "text/plain"
}

// TextualMIME reports whether content of the given MIME type decodes to a
// string during extraction. Anything else stays binary and goes through the
// blob store.
func TextualMIME(mimeType string) bool {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mimeType))
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch mt {
	case "application/json", "application/xml", "application/javascript",
		"application/x-www-form-urlencoded":
		return true
	}
	return strings.HasSuffix(mt, "+json") || strings.HasSuffix(mt, "+xml")
}

// DetectKind classifies a piece of text for display and record metadata.
func DetectKind(s string) types.ContentKind {
	t := strings.TrimSpace(s)
	if t == "" {
		return types.KindText
	}
	if isValidURL(t) {
		return types.KindURL
	}
	if isJSONDocument(t) {
		return types.KindJSON
	}
	if isHTMLDocument(t) {
		return types.KindHTML
	}
	if isLikelyFilePath(t) {
		return types.KindFilePath
	}
	return types.KindText
}

// DetectBinaryKind classifies binary content by magic bytes.
func DetectBinaryKind(data []byte) types.ContentKind {
	if isImage(data) {
		return types.KindImage
	}
	return types.KindFiles
}

// Title derives a single-line title from content: the first non-empty line,
// truncated to max runes.
func Title(s string, max int) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if max > 0 && len(runes) > max {
			return string(runes[:max]) + "..."
		}
		return line
	}
	return ""
}

// isJSONDocument requires an object or array, not a bare scalar, so that
// ordinary prose and numbers are not tagged as JSON.
func isJSONDocument(s string) bool {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return false
	}
	return IsStructured(s)
}

func isValidURL(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func isHTMLDocument(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "<!doctype html") ||
		strings.HasPrefix(lower, "<html") ||
		(strings.HasPrefix(lower, "<") && strings.Contains(lower, "</"))
}

// isLikelyFilePath keeps to single-line, reasonably short strings that start
// like a path or carry both a separator and an extension.
func isLikelyFilePath(s string) bool {
	if len(s) > 512 || strings.ContainsAny(s, "\n\t") {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "~/") || strings.HasPrefix(s, `\\`) {
		return true
	}
	if len(s) > 2 && s[1] == ':' && (s[0] >= 'A' && s[0] <= 'Z' || s[0] >= 'a' && s[0] <= 'z') {
		return true
	}
	if strings.ContainsAny(s, `/\`) && filepath.Ext(s) != "" && !strings.Contains(s, " ") {
		return true
	}
	return false
}

func isImage(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	switch {
	case bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}): // PNG
		return true
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}): // JPEG
		return true
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return true
	case bytes.HasPrefix(data, []byte{0x42, 0x4D}): // BMP
		return true
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return true
	}
	return false
}
