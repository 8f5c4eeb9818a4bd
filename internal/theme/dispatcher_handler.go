package theme

import (
	"github.com/kestrel-editor/kestrel/internal/dispatcher/execctx"
	"github.com/kestrel-editor/kestrel/internal/dispatcher/handler"
	"github.com/kestrel-editor/kestrel/internal/input"
)

// Action names for the theme picker.
const (
	ActionList    = "theme.list"
	ActionPreview = "theme.preview"
	ActionConfirm = "theme.confirm"
	ActionCancel  = "theme.cancel"
	ActionActive  = "theme.active"
)

// Handler exposes Manager's preview/confirm/cancel lifecycle as dispatcher
// actions. It implements the dispatcher's NamespaceHandler interface for
// the "theme" namespace.
type Handler struct {
	manager *Manager
	// onChange is invoked after a preview, confirm, or cancel rewrites the
	// effective style map, so callers can rebuild dependent state such as
	// the renderer's syntax-highlight theme.
	onChange func()

	actions map[string]func(action input.Action, ctx *execctx.ExecutionContext) handler.Result
}

// NewHandler creates a dispatcher handler bound to mgr. mgr may be nil, in
// which case every action reports unavailable. onChange may be nil.
func NewHandler(mgr *Manager, onChange func()) *Handler {
	h := &Handler{manager: mgr, onChange: onChange}
	h.actions = map[string]func(input.Action, *execctx.ExecutionContext) handler.Result{
		ActionList:    h.handleList,
		ActionPreview: h.handlePreview,
		ActionConfirm: h.handleConfirm,
		ActionCancel:  h.handleCancel,
		ActionActive:  h.handleActive,
	}
	return h
}

// Namespace implements handler.NamespaceHandler.
func (h *Handler) Namespace() string { return "theme" }

// CanHandle implements handler.NamespaceHandler.
func (h *Handler) CanHandle(actionName string) bool {
	_, ok := h.actions[actionName]
	return ok
}

// HandleAction implements handler.NamespaceHandler.
func (h *Handler) HandleAction(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	fn, ok := h.actions[action.Name]
	if !ok {
		return handler.Errorf("unknown theme action: %s", action.Name)
	}
	return fn(action, ctx)
}

func (h *Handler) handleList(_ input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.SuccessWithData("themes", []string{})
	}
	return handler.SuccessWithData("themes", h.manager.Names())
}

func (h *Handler) handlePreview(action input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.NoOpWithMessage("theme manager not configured")
	}
	name := action.Args.GetString("name")
	if err := h.manager.Preview(name); err != nil {
		return handler.Error(err)
	}
	h.notify()
	return handler.Success().WithRedraw()
}

func (h *Handler) handleConfirm(_ input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.NoOp()
	}
	if err := h.manager.Confirm(); err != nil {
		return handler.Error(err)
	}
	h.notify()
	return handler.Success()
}

func (h *Handler) handleCancel(_ input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.NoOp()
	}
	h.manager.Cancel()
	h.notify()
	return handler.Success().WithRedraw()
}

func (h *Handler) handleActive(_ input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.SuccessWithData("active", "")
	}
	return handler.SuccessWithData("active", h.manager.Active())
}

func (h *Handler) notify() {
	if h.onChange != nil {
		h.onChange()
	}
}
