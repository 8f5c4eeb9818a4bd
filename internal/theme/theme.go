// Package theme loads color themes from TOML and resolves them against a
// named palette into concrete renderer styles.
package theme

import "github.com/kestrel-editor/kestrel/internal/renderer/core"

// StyleRef describes a style in terms of palette names or literal hex
// colors, resolved later against a Theme's Palette.
type StyleRef struct {
	FgRef     string `toml:"fg"`
	BgRef     string `toml:"bg"`
	Bold      bool   `toml:"bold"`
	Italic    bool   `toml:"italic"`
	Underline bool   `toml:"underline"`
}

// Theme is a named color theme as loaded from TOML: a palette of named
// colors, plus a set of semantic styles expressed as references into that
// palette (or literal hex colors).
type Theme struct {
	Name    string              `toml:"name"`
	Palette map[string]string   `toml:"palette"`
	Styles  map[string]StyleRef `toml:"styles"`
}

// Special palette/style keys consumed directly by the editor chrome
// (background, cursor, selection, ...) rather than by scope-based syntax
// highlighting.
const (
	KeyBackground    = "background"
	KeyForeground    = "foreground"
	KeySelection     = "selection"
	KeyCursor        = "cursor"
	KeyLineHighlight = "lineHighlight"
	KeyDefault       = "default"
)

// ResolvedStyle pairs a resolved core.Style with whether its refs resolved
// cleanly (false means at least one ref fell back to the default style).
type ResolvedStyle struct {
	core.Style
	FellBack bool
}
