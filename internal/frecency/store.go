package frecency

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a frecency database from path. Any failure to read or parse
// the file (missing file, corrupt JSON, permission error) yields a fresh
// empty DB rather than an error: frecency is a ranking hint, not data the
// editor can't function without, so a damaged store should self-heal on
// the next Save instead of blocking startup.
func Load(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return New(), nil
	}

	db := New()
	if err := json.Unmarshal(data, db); err != nil {
		return New(), nil
	}
	if db.Entries == nil {
		db.Entries = make(map[string]Entry)
	}
	return db, nil
}

// Save writes d to path, creating its parent directory as needed.
func (d *DB) Save(path string) error {
	d.mu.Lock()
	data, err := json.MarshalIndent(d, "", "  ")
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("frecency: marshal db: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("frecency: create db dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("frecency: write db: %w", err)
	}
	return nil
}

// DefaultPath returns the default frecency database path under dataDir
// (typically Config.Paths().DataDir).
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "frecency.json")
}
