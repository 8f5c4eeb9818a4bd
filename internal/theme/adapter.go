package theme

import (
	"github.com/kestrel-editor/kestrel/internal/renderer/core"
	"github.com/kestrel-editor/kestrel/internal/renderer/highlight"
)

// ToHighlightTheme adapts a resolved style map into the shape the
// syntax-highlighting renderer expects: chrome colors pulled from the
// dedicated background/foreground/selection/cursor/lineHighlight keys,
// everything else carried through as scope styles (highlight.Theme falls
// back from a scope like "keyword.declaration" to "keyword" on its own).
func ToHighlightTheme(name string, styles map[string]core.Style) *highlight.Theme {
	bg := styles[KeyBackground].Background
	fg := styles[KeyForeground].Foreground
	sel := styles[KeySelection].Background
	cursor := styles[KeyCursor].Background
	lineHL := styles[KeyLineHighlight].Background

	if bg == (core.Color{}) {
		bg = core.ColorDefault
	}
	if fg == (core.Color{}) {
		fg = core.ColorDefault
	}

	scopeStyles := make(map[string]core.Style, len(styles))
	for key, style := range styles {
		switch key {
		case KeyBackground, KeyForeground, KeySelection, KeyCursor, KeyLineHighlight:
			continue
		}
		scopeStyles[key] = style
	}

	return &highlight.Theme{
		Name:          name,
		Background:    bg,
		Foreground:    fg,
		Selection:     sel,
		Cursor:        cursor,
		LineHighlight: lineHL,
		TokenStyles:   make(map[highlight.TokenType]core.Style),
		ScopeStyles:   scopeStyles,
	}
}
