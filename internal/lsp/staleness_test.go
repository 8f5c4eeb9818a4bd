package lsp

import "testing"

func TestShouldApply_DifferentURIAlwaysDropped(t *testing.T) {
	at := CursorState{URI: "file:///a.go", Line: 1, Char: 1}
	now := CursorState{URI: "file:///b.go", Line: 1, Char: 1}
	kind := HoverRequest{DocPosition{DocURI: "file:///a.go"}}

	if ShouldApply(kind, at, now) {
		t.Fatal("ShouldApply() = true for different URI, want false")
	}
}

func TestShouldApply_Hover(t *testing.T) {
	uri := "file:///a.go"
	kind := HoverRequest{DocPosition{DocURI: uri}}

	tests := []struct {
		name string
		at   CursorState
		now  CursorState
		want bool
	}{
		{"same position", CursorState{uri, 5, 10}, CursorState{uri, 5, 10}, true},
		{"within char distance", CursorState{uri, 5, 10}, CursorState{uri, 5, 18}, true},
		{"beyond char distance", CursorState{uri, 5, 10}, CursorState{uri, 5, 21}, false},
		{"within line distance", CursorState{uri, 5, 10}, CursorState{uri, 7, 10}, true},
		{"beyond line distance", CursorState{uri, 5, 10}, CursorState{uri, 8, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldApply(kind, tt.at, tt.now); got != tt.want {
				t.Errorf("ShouldApply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldApply_SignatureHelpDropsOnAnyLineChange(t *testing.T) {
	uri := "file:///a.go"
	kind := SignatureHelpRequest{DocPosition{DocURI: uri}}
	at := CursorState{uri, 5, 10}
	now := CursorState{uri, 6, 10}

	if ShouldApply(kind, at, now) {
		t.Fatal("ShouldApply() = true for signature help after line change, want false")
	}
}

func TestShouldApply_CompletionNeverDroppedForMovement(t *testing.T) {
	uri := "file:///a.go"
	kind := CompletionRequest{DocPosition: DocPosition{DocURI: uri}}
	at := CursorState{uri, 5, 10}
	now := CursorState{uri, 50, 500}

	if !ShouldApply(kind, at, now) {
		t.Fatal("ShouldApply() = false for completion on cursor movement, want true")
	}
}

func TestRefilterPrefix(t *testing.T) {
	labels := []string{"format", "Formatter", "fmt", "println"}

	got := RefilterPrefix(labels, "form")
	want := []string{"format", "Formatter"}
	if len(got) != len(want) {
		t.Fatalf("RefilterPrefix() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RefilterPrefix()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRefilterPrefix_EmptyPrefixReturnsAll(t *testing.T) {
	labels := []string{"a", "b"}
	got := RefilterPrefix(labels, "")
	if len(got) != 2 {
		t.Fatalf("RefilterPrefix() with empty prefix = %v, want original slice", got)
	}
}
