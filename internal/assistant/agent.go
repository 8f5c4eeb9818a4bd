package assistant

import (
	"context"
	"sync/atomic"
)

// Logger is the subset of *app.Logger's interface Agent needs. It is
// declared locally, rather than importing internal/app directly, so the
// application package can construct an Agent without an import cycle
// (internal/app already wires up every other editor subsystem).
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// nullLogger discards everything; used when NewAgent is given a nil Logger.
type nullLogger struct{}

func (nullLogger) Debug(format string, args ...any) {}
func (nullLogger) Warn(format string, args ...any)  {}

// Agent mediates between the editor and a single configured Provider,
// issuing completion/chat requests asynchronously and delivering results
// on Notifications the way a language server's notification stream would,
// without needing an actual subprocess or wire protocol for a request path
// that is really just an in-process SDK call.
type Agent struct {
	provider Provider
	store    *TokenStore
	log      Logger

	nextID        atomic.Int64
	Notifications chan Notification
}

// NewAgent creates an Agent backed by provider, using store to resolve
// credentials for status checks. log may be nil, in which case logging is
// discarded.
func NewAgent(provider Provider, store *TokenStore, log Logger) *Agent {
	if log == nil {
		log = nullLogger{}
	}
	return &Agent{
		provider:      provider,
		store:         store,
		log:           log,
		Notifications: make(chan Notification, 16),
	}
}

// Status reports the underlying provider's auth status.
func (a *Agent) Status() AuthStatus {
	return a.provider.Status()
}

// RequestCompletion issues an async completion request for doc and returns
// the request id the eventual notification will carry. Safe to call from
// any goroutine.
func (a *Agent) RequestCompletion(ctx context.Context, doc Document) int64 {
	id := a.nextID.Add(1)
	go func() {
		result, err := a.provider.Complete(ctx, doc)
		if err != nil {
			a.log.Warn("completion request failed: %v", err)
			a.Notifications <- Notification{Kind: NotifyError, Err: err}
			return
		}
		result.RequestID = id
		a.Notifications <- Notification{Kind: NotifyCompletions, Completions: result}
	}()
	return id
}

// RequestChat issues an async chat request and returns the request id.
func (a *Agent) RequestChat(ctx context.Context, req ChatRequest, cb func(ChatResult, error)) int64 {
	id := a.nextID.Add(1)
	go func() {
		result, err := a.provider.Chat(ctx, req)
		result.RequestID = id
		cb(result, err)
	}()
	return id
}

// NotifyAccepted records that a suggested completion was accepted. This is
// a bookkeeping hook (e.g. for frecency or telemetry), not a network call.
func (a *Agent) NotifyAccepted(uuid string, acceptedLength int) {
	a.log.Debug("completion accepted: uuid=%s length=%d", uuid, acceptedLength)
}

// NotifyRejected records that suggested completions were dismissed.
func (a *Agent) NotifyRejected(uuids []string) {
	a.log.Debug("completions rejected: count=%d", len(uuids))
}
