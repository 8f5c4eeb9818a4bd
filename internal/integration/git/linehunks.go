package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineStatus describes how a buffer line compares to the HEAD version of
// the same file, for rendering gutter signs.
type LineStatus int

const (
	// LineAdded indicates the line does not exist in HEAD.
	LineAdded LineStatus = iota
	// LineModified indicates the line's content differs from HEAD.
	LineModified
	// LineDeleted marks a position where one or more HEAD lines were
	// removed; it has no corresponding buffer line of its own.
	LineDeleted
)

// String returns the gutter-sign name for a LineStatus.
func (s LineStatus) String() string {
	switch s {
	case LineAdded:
		return "added"
	case LineModified:
		return "modified"
	case LineDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// LineHunk marks a single buffer line (0-indexed) as changed relative to
// HEAD, or marks a deletion position between two buffer lines.
type LineHunk struct {
	Line   int
	Status LineStatus
}

// LineDiff is the set of per-line hunks for one file, queryable by line.
type LineDiff struct {
	Hunks []LineHunk

	byLine map[int]LineStatus
}

// NewLineDiff indexes hunks for StatusForLine lookups.
func NewLineDiff(hunks []LineHunk) *LineDiff {
	byLine := make(map[int]LineStatus, len(hunks))
	for _, h := range hunks {
		byLine[h.Line] = h.Status
	}
	return &LineDiff{Hunks: hunks, byLine: byLine}
}

// StatusForLine returns the status of the given 0-indexed line and whether
// it has one.
func (d *LineDiff) StatusForLine(line int) (LineStatus, bool) {
	s, ok := d.byLine[line]
	return s, ok
}

// HeadFileContent returns the content of path as recorded in the HEAD
// commit. path may be absolute or relative to the repository root.
// Returns ErrNotTracked if the file has no HEAD entry (e.g. newly created).
func (r *Repository) HeadFileContent(path string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rel, err := r.relPath(path)
	if err != nil {
		return "", err
	}

	out, err := r.git("show", "HEAD:"+rel)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "exists on disk, but not in") {
			return "", ErrNotTracked
		}
		return "", fmt.Errorf("head content %s: %w", rel, err)
	}
	return out, nil
}

func (r *Repository) relPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	rel, err := filepath.Rel(r.path, path)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

// ComputeLineHunks diffs headContent against bufferContent line by line and
// returns the resulting hunks against bufferContent's line numbering.
//
// Deletions are reported as a single LineDeleted hunk at the buffer
// position where the removed lines used to be, matching how editors show
// a deletion marker between two surviving lines rather than highlighting
// lines that no longer exist. A deletion immediately followed by an
// insertion at the same position is reported as LineModified instead of
// LineAdded, since the line survived with different content.
func ComputeLineHunks(headContent, bufferContent string) []LineHunk {
	if headContent == bufferContent {
		return nil
	}

	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(headContent, bufferContent)
	diffs := dmp.DiffMainRunes(src, dst, false)

	var hunks []LineHunk
	newLine := 0
	pendingDeletes := 0

	for _, d := range diffs {
		count := len([]rune(d.Text))

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for i := 0; i < count; i++ {
				if pendingDeletes > 0 {
					hunks = append(hunks, LineHunk{Line: newLine, Status: LineModified})
					pendingDeletes--
				} else {
					hunks = append(hunks, LineHunk{Line: newLine, Status: LineAdded})
				}
				newLine++
			}
		case diffmatchpatch.DiffDelete:
			pendingDeletes += count
		case diffmatchpatch.DiffEqual:
			if pendingDeletes > 0 {
				hunks = append(hunks, LineHunk{Line: newLine, Status: LineDeleted})
				pendingDeletes = 0
			}
			newLine += count
		}
	}

	if pendingDeletes > 0 {
		line := newLine - 1
		if line < 0 {
			line = 0
		}
		hunks = append(hunks, LineHunk{Line: line, Status: LineDeleted})
	}

	return hunks
}
