// Package format renders captures and saved records for terminals.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clipsift/clipsift/internal/classify"
	"github.com/clipsift/clipsift/internal/storage"
	"github.com/clipsift/clipsift/internal/types"
)

// Entry renders one capture.
func Entry(e *types.Entry, opts Options) string {
	if e == nil {
		return dim("(no entry)", opts.UseColors)
	}
	kind := entryKind(e)

	if opts.Compact {
		return entryHeader(e, kind, opts) + "  " +
			dim(entryPreview(e, previewWidth(opts)), opts.UseColors)
	}

	parts := []string{entryHeader(e, kind, opts)}
	if opts.ShowMetadata {
		parts = append(parts, dim(entryMetadata(e), opts.UseColors))
	}
	if b := entryBody(e, opts); b != "" {
		parts = append(parts, indent(b, "  "))
	}
	return strings.Join(parts, "\n")
}

// EntryList renders a history snapshot, most recent first.
func EntryList(entries []*types.Entry, opts Options) string {
	if len(entries) == 0 {
		return dim("history is empty", opts.UseColors)
	}
	var parts []string
	for i, e := range entries {
		parts = append(parts, fmt.Sprintf("[%d] %s", i+1, Entry(e, opts)))
		if !opts.Compact && i < len(entries)-1 {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\n")
}

// Record renders one saved record.
func Record(rec storage.EntryRecord, opts Options) string {
	kind := types.ContentKind(rec.ContentType)
	title := rec.Title
	if title == "" {
		title = "(untitled)"
	}

	var head []string
	if opts.UseIcons {
		if icon, ok := kindIcons[kind]; ok {
			head = append(head, icon)
		}
	}
	head = append(head, colorize(title, kind, opts.UseColors))

	meta := []string{string(kind)}
	if rec.LibraryID != "" {
		meta = append(meta, "library "+rec.LibraryID)
	}
	meta = append(meta, relativeTime(rec.SavedAt))
	headline := strings.Join(head, " ") + "  " +
		dim(strings.Join(meta, " • "), opts.UseColors)

	if opts.Compact {
		return headline + "  " +
			dim(classify.Title(rec.Content, previewWidth(opts)), opts.UseColors)
	}
	if rec.Content == "" {
		return headline
	}
	return headline + "\n" + indent(clampLines(rec.Content, opts.MaxLines), "  ")
}

// RecordList renders saved records.
func RecordList(records []storage.EntryRecord, opts Options) string {
	if len(records) == 0 {
		return dim("no saved records", opts.UseColors)
	}
	var parts []string
	for i, rec := range records {
		parts = append(parts, fmt.Sprintf("[%d] %s", i+1, Record(rec, opts)))
		if !opts.Compact && i < len(records)-1 {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\n")
}

func entryKind(e *types.Entry) types.ContentKind {
	if text, ok := e.PrimaryText(); ok {
		return classify.DetectKind(text)
	}
	if len(e.Handles()) > 0 {
		return types.KindFiles
	}
	return types.KindText
}

func entryHeader(e *types.Entry, kind types.ContentKind, opts Options) string {
	var parts []string
	if opts.UseIcons {
		if icon, ok := kindIcons[kind]; ok {
			parts = append(parts, icon)
		}
	}
	parts = append(parts, colorize(string(kind), kind, opts.UseColors))
	if e.SourceLabel != "" {
		parts = append(parts, dim(e.SourceLabel, opts.UseColors))
	}
	return strings.Join(parts, " ")
}

func entryMetadata(e *types.Entry) string {
	fields := []string{relativeTime(e.CreatedAt)}
	if n := len(e.Types); n > 0 {
		fields = append(fields, fmt.Sprintf("types: %d", n))
	}
	if n := len(e.Files); n > 0 {
		fields = append(fields, fmt.Sprintf("files: %d", n))
	}
	if size := totalSize(e); size > 0 {
		fields = append(fields, humanSize(size))
	}
	fields = append(fields, "id: "+shortID(e.ID))
	return strings.Join(fields, " • ")
}

func entryPreview(e *types.Entry, width int) string {
	if text, ok := e.PrimaryText(); ok {
		return classify.Title(text, width)
	}
	if n := len(e.Files); n > 0 {
		if n == 1 {
			return fmt.Sprintf("%s (%s)", e.Files[0].Name, humanSize(e.Files[0].Size))
		}
		return fmt.Sprintf("%d files (%s)", n, humanSize(totalSize(e)))
	}
	return "(empty)"
}

func entryBody(e *types.Entry, opts Options) string {
	var parts []string
	for _, p := range e.Types {
		switch p.Kind {
		case types.PayloadText:
			parts = append(parts, p.MIME+":")
			parts = append(parts, indent(clampLines(p.Text, opts.MaxLines), "  "))
		case types.PayloadFile:
			if p.File != nil {
				parts = append(parts, fmt.Sprintf("%s: %s (%s)",
					p.MIME, p.File.Name, humanSize(p.File.Size)))
			}
		}
	}
	for _, fd := range e.Files {
		parts = append(parts, fmt.Sprintf("%s (%s, %s)",
			fd.Name, fd.MIME, humanSize(fd.Size)))
	}
	return strings.Join(parts, "\n")
}

func totalSize(e *types.Entry) int64 {
	var total int64
	for _, p := range e.Types {
		if p.File != nil {
			total += p.File.Size
		}
	}
	for _, fd := range e.Files {
		total += fd.Size
	}
	return total
}

func previewWidth(opts Options) int {
	if opts.MaxWidth > 0 {
		return opts.MaxWidth
	}
	return 60
}

func shortID(id string) string {
	if utf8.RuneCountInString(id) <= 8 {
		return id
	}
	return string([]rune(id)[:8])
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func relativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func clampLines(text string, maxLines int) string {
	if maxLines <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[:maxLines], "\n") +
		fmt.Sprintf("\n... (%d more lines)", len(lines)-maxLines)
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
