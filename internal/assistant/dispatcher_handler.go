package assistant

import (
	"context"
	"time"

	"github.com/kestrel-editor/kestrel/internal/dispatcher/execctx"
	"github.com/kestrel-editor/kestrel/internal/dispatcher/handler"
	"github.com/kestrel-editor/kestrel/internal/engine/buffer"
	"github.com/kestrel-editor/kestrel/internal/input"
)

// Action names for assistant operations.
const (
	ActionRequestCompletion = "assistant.requestCompletion"
	ActionAccept            = "assistant.accept"
	ActionReject            = "assistant.reject"
	ActionStatus            = "assistant.status"
)

// contextBytes bounds how much buffer text surrounds the cursor in the
// Document sent to a provider; providers charge by token count, so the
// prefix/suffix windows stay well short of a full large file.
const contextBytes = 4000

// Handler exposes Agent operations as dispatcher actions. It implements
// the dispatcher's NamespaceHandler interface for the "assistant" namespace.
type Handler struct {
	agent          *Agent
	requestTimeout time.Duration
	actions        map[string]func(action input.Action, ctx *execctx.ExecutionContext) handler.Result
}

// NewHandler creates a dispatcher handler bound to agent. agent may be nil
// (e.g. assistant disabled or unconfigured), in which case every action
// reports unavailable rather than panicking.
func NewHandler(agent *Agent) *Handler {
	h := &Handler{
		agent:          agent,
		requestTimeout: 30 * time.Second,
	}
	h.actions = map[string]func(input.Action, *execctx.ExecutionContext) handler.Result{
		ActionRequestCompletion: h.handleRequestCompletion,
		ActionAccept:            h.handleAccept,
		ActionReject:            h.handleReject,
		ActionStatus:            h.handleStatus,
	}
	return h
}

// Namespace implements handler.NamespaceHandler.
func (h *Handler) Namespace() string { return "assistant" }

// CanHandle implements handler.NamespaceHandler.
func (h *Handler) CanHandle(actionName string) bool {
	_, ok := h.actions[actionName]
	return ok
}

// HandleAction implements handler.NamespaceHandler.
func (h *Handler) HandleAction(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	fn, ok := h.actions[action.Name]
	if !ok {
		return handler.Errorf("unknown assistant action: %s", action.Name)
	}
	return fn(action, ctx)
}

func (h *Handler) handleRequestCompletion(_ input.Action, ctx *execctx.ExecutionContext) handler.Result {
	if h.agent == nil {
		return handler.NoOpWithMessage("assistant not configured")
	}
	if ctx.Engine == nil || ctx.Cursors == nil || ctx.Cursors.Count() == 0 {
		return handler.Error(execctx.ErrMissingEngine)
	}

	doc := h.documentFromContext(ctx)

	reqCtx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	id := h.agent.RequestCompletion(reqCtx, doc)

	return handler.Success().
		WithMessage("completion requested").
		WithData("requestID", id)
}

func (h *Handler) handleAccept(action input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.agent == nil {
		return handler.NoOp()
	}
	uuid := action.Args.GetString("uuid")
	length := action.Args.GetInt("acceptedLength")
	h.agent.NotifyAccepted(uuid, length)
	return handler.Success()
}

func (h *Handler) handleReject(action input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.agent == nil {
		return handler.NoOp()
	}
	h.agent.NotifyRejected(uuidsFromArgs(action.Args))
	return handler.Success()
}

func (h *Handler) handleStatus(_ input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.agent == nil {
		return handler.SuccessWithData("status", AuthStatus{SignedIn: false, Detail: "assistant not configured"})
	}
	return handler.SuccessWithData("status", h.agent.Status())
}

// uuidsFromArgs extracts the "uuids" arg as a []string, tolerating either
// a native []string or a []interface{} of strings (the shape JSON-sourced
// action args typically arrive in).
func uuidsFromArgs(args input.ActionArgs) []string {
	v, ok := args.Get("uuids")
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// documentFromContext builds a Document anchored at the primary cursor,
// bounding prefix/suffix to contextBytes on either side.
func (h *Handler) documentFromContext(ctx *execctx.ExecutionContext) Document {
	offset := ctx.Cursors.Primary().Head
	point := ctx.Engine.OffsetToPoint(offset)

	start := buffer.ByteOffset(0)
	if offset > buffer.ByteOffset(contextBytes) {
		start = offset - buffer.ByteOffset(contextBytes)
	}
	end := offset + buffer.ByteOffset(contextBytes)
	if max := ctx.Engine.Len(); end > max {
		end = max
	}

	return Document{
		URI:        ctx.FilePath,
		LanguageID: ctx.FileType,
		Line:       int(point.Line),
		Character:  int(point.Column),
		Prefix:     ctx.Engine.TextRange(start, offset),
		Suffix:     ctx.Engine.TextRange(offset, end),
	}
}
