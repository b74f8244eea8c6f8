package format

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Options controls rendering.
type Options struct {
	UseColors    bool
	UseIcons     bool
	MaxWidth     int // max preview width in runes (0 = renderer default)
	MaxLines     int // max content lines (0 = no limit)
	ShowMetadata bool
	Compact      bool // single-line format
}

// DefaultOptions enables color only when stdout is a terminal.
func DefaultOptions() Options {
	fd := os.Stdout.Fd()
	return Options{
		UseColors:    isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		UseIcons:     true,
		MaxWidth:     80,
		MaxLines:     10,
		ShowMetadata: true,
	}
}

// CompactOptions is the single-line list variant.
func CompactOptions() Options {
	opts := DefaultOptions()
	opts.Compact = true
	opts.ShowMetadata = false
	opts.MaxLines = 1
	return opts
}
