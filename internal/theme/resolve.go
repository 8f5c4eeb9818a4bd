package theme

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/kestrel-editor/kestrel/internal/renderer/core"
)

// Resolve walks th.Styles, resolving each ref through th.Palette (or a
// literal #RRGGBB hex color) into a concrete core.Style. A ref that
// resolves to neither a palette entry nor a valid hex color falls back to
// th.Styles["default"] (or, failing that, a neutral style), and the
// fallback is logged at Warn once per offending key rather than failing
// the whole theme load.
func Resolve(th *Theme, log Logger) map[string]core.Style {
	if log == nil {
		log = nullLogger{}
	}

	warned := make(map[string]bool)
	resolved := make(map[string]core.Style, len(th.Styles))

	defaultRef, hasDefault := th.Styles[KeyDefault]

	for name, ref := range th.Styles {
		style, ok := resolveRef(th, ref)
		if !ok {
			if !warned[name] {
				log.Warn("theme: unresolved color ref, using default", "theme", th.Name, "style", name, "fg", ref.FgRef, "bg", ref.BgRef)
				warned[name] = true
			}
			if hasDefault && name != KeyDefault {
				style, ok = resolveRef(th, defaultRef)
			}
			if !ok {
				style = core.Style{Foreground: core.ColorDefault, Background: core.ColorDefault}
			}
		}
		resolved[name] = style
	}

	return resolved
}

func resolveRef(th *Theme, ref StyleRef) (core.Style, bool) {
	style := core.DefaultStyle()
	ok := true

	if ref.FgRef != "" {
		c, fgOK := resolveColor(th, ref.FgRef)
		if fgOK {
			style.Foreground = c
		} else {
			ok = false
		}
	}
	if ref.BgRef != "" {
		c, bgOK := resolveColor(th, ref.BgRef)
		if bgOK {
			style.Background = c
		} else {
			ok = false
		}
	}

	if ref.Bold {
		style.Attributes = style.Attributes.With(core.AttrBold)
	}
	if ref.Italic {
		style.Attributes = style.Attributes.With(core.AttrItalic)
	}
	if ref.Underline {
		style.Attributes = style.Attributes.With(core.AttrUnderline)
	}

	return style, ok
}

// resolveColor resolves a single ref (palette name or literal hex) into a
// core.Color.
func resolveColor(th *Theme, ref string) (core.Color, bool) {
	if strings.HasPrefix(ref, "#") {
		c, err := colorful.Hex(ref)
		if err != nil {
			return core.Color{}, false
		}
		r, g, b := c.Clamped().RGB255()
		return core.ColorFromRGB(r, g, b), true
	}

	hex, ok := th.Palette[ref]
	if !ok {
		return core.Color{}, false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return core.Color{}, false
	}
	r, g, b := c.Clamped().RGB255()
	return core.ColorFromRGB(r, g, b), true
}
