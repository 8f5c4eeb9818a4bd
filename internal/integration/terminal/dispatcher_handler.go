package terminal

import (
	"github.com/kestrel-editor/kestrel/internal/dispatcher/execctx"
	"github.com/kestrel-editor/kestrel/internal/dispatcher/handler"
	"github.com/kestrel-editor/kestrel/internal/input"
)

// Action names for embedded-terminal operations.
const (
	ActionCreate = "terminal.create"
	ActionWrite  = "terminal.write"
	ActionResize = "terminal.resize"
	ActionClose  = "terminal.close"
	ActionList   = "terminal.list"
)

// Handler exposes Manager operations as dispatcher actions. It implements
// the dispatcher's NamespaceHandler interface for the "terminal" namespace.
type Handler struct {
	manager *Manager
	actions map[string]func(action input.Action, ctx *execctx.ExecutionContext) handler.Result
}

// NewHandler creates a dispatcher handler bound to mgr. mgr may be nil, in
// which case every action reports unavailable.
func NewHandler(mgr *Manager) *Handler {
	h := &Handler{manager: mgr}
	h.actions = map[string]func(input.Action, *execctx.ExecutionContext) handler.Result{
		ActionCreate: h.handleCreate,
		ActionWrite:  h.handleWrite,
		ActionResize: h.handleResize,
		ActionClose:  h.handleClose,
		ActionList:   h.handleList,
	}
	return h
}

// Namespace implements handler.NamespaceHandler.
func (h *Handler) Namespace() string { return "terminal" }

// CanHandle implements handler.NamespaceHandler.
func (h *Handler) CanHandle(actionName string) bool {
	_, ok := h.actions[actionName]
	return ok
}

// HandleAction implements handler.NamespaceHandler.
func (h *Handler) HandleAction(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	fn, ok := h.actions[action.Name]
	if !ok {
		return handler.Errorf("unknown terminal action: %s", action.Name)
	}
	return fn(action, ctx)
}

func (h *Handler) handleCreate(action input.Action, ctx *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.NoOpWithMessage("terminal integration not configured")
	}

	opts := Options{
		Name:    action.Args.GetString("name"),
		WorkDir: action.Args.GetString("workDir"),
	}
	if opts.WorkDir == "" {
		opts.WorkDir = ctx.FilePath
	}

	term, err := h.manager.Create(opts)
	if err != nil {
		return handler.Error(err)
	}

	return handler.Success().
		WithMessage("terminal created").
		WithData("id", term.ID()).
		WithData("name", term.Name())
}

func (h *Handler) handleWrite(action input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.NoOp()
	}
	id := action.Args.GetString("id")
	term, ok := h.manager.Get(id)
	if !ok {
		return handler.Errorf("terminal not found: %s", id)
	}
	if _, err := term.WriteString(action.Args.Text); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) handleResize(action input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.NoOp()
	}
	id := action.Args.GetString("id")
	term, ok := h.manager.Get(id)
	if !ok {
		return handler.Errorf("terminal not found: %s", id)
	}
	cols := action.Args.GetInt("cols")
	rows := action.Args.GetInt("rows")
	if err := term.Resize(cols, rows); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) handleClose(action input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.NoOp()
	}
	id := action.Args.GetString("id")
	if err := h.manager.Close(id); err != nil {
		return handler.Error(err)
	}
	return handler.Success()
}

func (h *Handler) handleList(_ input.Action, _ *execctx.ExecutionContext) handler.Result {
	if h.manager == nil {
		return handler.SuccessWithData("terminals", []string{})
	}
	terms := h.manager.List()
	ids := make([]string, len(terms))
	for i, t := range terms {
		ids[i] = t.ID()
	}
	return handler.SuccessWithData("terminals", ids)
}
