package lsp

import "sync"

// RequestKind tags a pending request with the editor context it was issued
// under, so the response can later be checked for staleness against the
// editor's current state (see staleness.go).
type RequestKind interface {
	// URI returns the document URI the request concerns.
	URI() string
}

// DocPosition is shared by request kinds anchored to a single cursor
// position within a document version.
type DocPosition struct {
	DocURI  string
	Version int32
	Line    int
	Char    int // UTF-16 code units, matching the LSP wire position
}

// HoverRequest tags a textDocument/hover call.
type HoverRequest struct{ DocPosition }

// URI implements RequestKind.
func (h HoverRequest) URI() string { return h.DocURI }

// SignatureHelpRequest tags a textDocument/signatureHelp call.
type SignatureHelpRequest struct{ DocPosition }

// URI implements RequestKind.
func (s SignatureHelpRequest) URI() string { return s.DocURI }

// CompletionRequest tags a textDocument/completion call. Prefix is the
// word-so-far at the time the request was issued, used to re-filter the
// result against the current prefix if more was typed before it returned.
type CompletionRequest struct {
	DocPosition
	Prefix string
}

// URI implements RequestKind.
func (c CompletionRequest) URI() string { return c.DocURI }

// DefinitionRequest tags a textDocument/definition (or declaration/
// typeDefinition/implementation) call.
type DefinitionRequest struct{ DocPosition }

// URI implements RequestKind.
func (d DefinitionRequest) URI() string { return d.DocURI }

// OtherRequest tags any request kind the staleness filter treats as
// always-valid (e.g. workspace-level or document-lifecycle calls).
type OtherRequest struct {
	DocURI string
	Method string
}

// URI implements RequestKind.
func (o OtherRequest) URI() string { return o.DocURI }

// PendingTable tracks the RequestKind associated with each in-flight
// request id, so a response handler can look up what the request was for
// once the server replies.
type PendingTable struct {
	mu      sync.Mutex
	entries map[int64]RequestKind
}

// NewPendingTable creates an empty pending-request table.
func NewPendingTable() *PendingTable {
	return &PendingTable{entries: make(map[int64]RequestKind)}
}

// Track records the kind for a request id. Must be called before the
// request is written to the wire, so a fast response can never race ahead
// of the bookkeeping.
func (p *PendingTable) Track(id int64, kind RequestKind) {
	p.mu.Lock()
	p.entries[id] = kind
	p.mu.Unlock()
}

// Take removes and returns the kind recorded for a request id, if any.
func (p *PendingTable) Take(id int64) (RequestKind, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kind, ok := p.entries[id]
	if ok {
		delete(p.entries, id)
	}
	return kind, ok
}

// Len reports the number of in-flight requests being tracked.
func (p *PendingTable) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
