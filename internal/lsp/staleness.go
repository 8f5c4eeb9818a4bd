package lsp

// CursorState is the editor state relevant to staleness checks: which
// document is focused and where the cursor sits in it.
type CursorState struct {
	URI  string
	Line int
	Char int // UTF-16 code units
}

// maxStaleLines is the line-distance threshold beyond which a hover or
// signature-help response is considered stale.
const maxStaleLines = 2

// maxStaleChars is the same-line column-distance threshold beyond which a
// hover or signature-help response is considered stale.
const maxStaleChars = 10

// ShouldApply reports whether a response for the given request kind,
// issued when the cursor was at `at`, should still be applied now that the
// cursor is at `now`. Completion responses are never dropped for cursor
// movement (the caller is expected to re-filter against the live prefix);
// every other kind is dropped once the editor has moved far enough away
// that the response would land somewhere the user no longer cares about.
func ShouldApply(kind RequestKind, at, now CursorState) bool {
	if kind.URI() != now.URI {
		return false
	}

	switch k := kind.(type) {
	case CompletionRequest:
		_ = k
		return true
	case HoverRequest:
		return withinHoverDistance(at, now)
	case SignatureHelpRequest:
		if now.Line != at.Line {
			return false
		}
		return withinHoverDistance(at, now)
	case DefinitionRequest:
		return true
	default:
		return true
	}
}

func withinHoverDistance(at, now CursorState) bool {
	lineDelta := now.Line - at.Line
	if lineDelta < 0 {
		lineDelta = -lineDelta
	}
	if lineDelta > maxStaleLines {
		return false
	}
	if now.Line == at.Line {
		charDelta := now.Char - at.Char
		if charDelta < 0 {
			charDelta = -charDelta
		}
		if charDelta > maxStaleChars {
			return false
		}
	}
	return true
}

// RefilterPrefix narrows a completion item list to those whose label (or
// insert text, if non-empty) still has the current live prefix, applying
// the same matching rule a fresh request at the current prefix would have
// used. Used to reapply a CompletionRequest's stale prefix filter against
// whatever the user has typed since the request was sent.
func RefilterPrefix(labels []string, livePrefix string) []string {
	if livePrefix == "" {
		return labels
	}
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if hasPrefixFold(label, livePrefix) {
			out = append(out, label)
		}
	}
	return out
}

func hasPrefixFold(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a, b := s[i], prefix[i]
		if a == b {
			continue
		}
		if toLowerASCII(a) != toLowerASCII(b) {
			return false
		}
	}
	return true
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
