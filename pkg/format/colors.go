package format

import (
	"github.com/fatih/color"

	"github.com/clipsift/clipsift/internal/types"
)

var kindColors = map[types.ContentKind]*color.Color{
	types.KindText:     color.New(color.FgCyan),
	types.KindURL:      color.New(color.FgBlue),
	types.KindFilePath: color.New(color.FgYellow),
	types.KindJSON:     color.New(color.FgGreen),
	types.KindHTML:     color.New(color.FgMagenta),
	types.KindImage:    color.New(color.FgHiMagenta),
	types.KindFiles:    color.New(color.FgHiYellow),
}

var kindIcons = map[types.ContentKind]string{
	types.KindText:     "📝",
	types.KindURL:      "🔗",
	types.KindFilePath: "📁",
	types.KindJSON:     "🧩",
	types.KindHTML:     "🌐",
	types.KindImage:    "🖼",
	types.KindFiles:    "📎",
}

var faint = color.New(color.Faint)

func colorize(s string, kind types.ContentKind, useColors bool) string {
	if !useColors {
		return s
	}
	c, ok := kindColors[kind]
	if !ok {
		return s
	}
	return c.Sprint(s)
}

func dim(s string, useColors bool) string {
	if !useColors {
		return s
	}
	return faint.Sprint(s)
}
