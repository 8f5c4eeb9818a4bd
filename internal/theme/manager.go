package theme

import (
	"fmt"
	"sync"

	"github.com/kestrel-editor/kestrel/internal/config"
	"github.com/kestrel-editor/kestrel/internal/renderer/core"
)

// Logger is the subset of *app.Logger this package needs. Defined locally
// to avoid an import cycle with internal/app, which constructs a Manager.
type Logger interface {
	Warn(msg string, args ...any)
}

// nullLogger discards everything; the zero-value default when no logger
// is supplied.
type nullLogger struct{}

func (nullLogger) Warn(string, ...any) {}

// Manager tracks the active theme and drives the theme-picker's
// preview/confirm/cancel lifecycle.
type Manager struct {
	mu sync.RWMutex

	loader *Loader
	cfg    *config.Config
	log    Logger

	themes  map[string]*Theme
	active  string
	styles  map[string]core.Style
	preview string
}

// NewManager creates a Manager backed by loader, reading/writing the
// active theme through cfg's "ui.theme" key.
func NewManager(loader *Loader, cfg *config.Config, log Logger) (*Manager, error) {
	if log == nil {
		log = nullLogger{}
	}

	themes, err := loader.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading themes: %w", err)
	}

	m := &Manager{
		loader: loader,
		cfg:    cfg,
		log:    log,
		themes: themes,
	}

	name := "Default Dark"
	if cfg != nil {
		if s, err := cfg.GetString("ui.theme"); err == nil && s != "" {
			if _, ok := themes[s]; ok {
				name = s
			}
		}
	}
	m.active = name
	m.styles = m.resolveLocked(name)

	return m, nil
}

func (m *Manager) resolveLocked(name string) map[string]core.Style {
	th, ok := m.themes[name]
	if !ok {
		return map[string]core.Style{KeyDefault: core.DefaultStyle()}
	}
	return Resolve(th, m.log)
}

// Names returns the names of every loaded theme.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	return names
}

// Active returns the name of the currently confirmed theme.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Styles returns the resolved style map currently in effect — the
// preview's styles if a Preview is pending, otherwise the active theme's.
func (m *Manager) Styles() map[string]core.Style {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.styles
}

// Preview resolves name's styles and makes them the effective style map
// without persisting the choice, so a picker UI can show it live.
func (m *Manager) Preview(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.themes[name]; !ok {
		return fmt.Errorf("theme: unknown theme %q", name)
	}
	if m.preview == "" {
		m.preview = m.active
	}
	m.active = name
	m.styles = m.resolveLocked(name)
	return nil
}

// Confirm persists the currently previewed (or active) theme to
// configuration and ends the preview.
func (m *Manager) Confirm() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.preview = ""
	if m.cfg == nil {
		return nil
	}
	return m.cfg.Set("ui.theme", m.active)
}

// Cancel reverts to the theme that was active before Preview was called.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.preview == "" {
		return
	}
	m.active = m.preview
	m.styles = m.resolveLocked(m.preview)
	m.preview = ""
}
