package theme

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed themes/*.toml
var bundledFS embed.FS

// Loader loads bundled themes plus user themes from a config directory.
// User themes with the same name as a bundled theme override it.
type Loader struct {
	userDir string
}

// NewLoader creates a Loader that also looks for *.toml files under
// userDir (typically $KESTREL_CONFIG/themes).
func NewLoader(userDir string) *Loader {
	return &Loader{userDir: userDir}
}

// LoadAll returns every available theme, bundled and user-defined,
// keyed by name.
func (l *Loader) LoadAll() (map[string]*Theme, error) {
	themes := make(map[string]*Theme)

	entries, err := bundledFS.ReadDir("themes")
	if err != nil {
		return nil, fmt.Errorf("reading bundled themes: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		data, err := bundledFS.ReadFile(filepath.Join("themes", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading bundled theme %s: %w", e.Name(), err)
		}
		th, err := parseTheme(data)
		if err != nil {
			return nil, fmt.Errorf("parsing bundled theme %s: %w", e.Name(), err)
		}
		themes[th.Name] = th
	}

	if l.userDir == "" {
		return themes, nil
	}

	userEntries, err := os.ReadDir(l.userDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return nil, fmt.Errorf("reading user themes dir %s: %w", l.userDir, err)
	}
	for _, e := range userEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		path := filepath.Join(l.userDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading user theme %s: %w", path, err)
		}
		th, err := parseTheme(data)
		if err != nil {
			return nil, fmt.Errorf("parsing user theme %s: %w", path, err)
		}
		themes[th.Name] = th
	}

	return themes, nil
}

// Names returns the sorted names of every theme LoadAll would return.
func (l *Loader) Names() ([]string, error) {
	themes, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func parseTheme(data []byte) (*Theme, error) {
	var th Theme
	if err := toml.Unmarshal(data, &th); err != nil {
		return nil, err
	}
	if th.Name == "" {
		return nil, fmt.Errorf("theme missing required name field")
	}
	return &th, nil
}
