package assistant

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// TokenStore persists one API key per provider in a single JSON file,
// writing back only the touched provider's sub-object so that concurrent
// providers never clobber each other's stored credential.
type TokenStore struct {
	mu   sync.Mutex
	path string
}

// NewTokenStore opens (without yet reading) the credential file at path,
// typically <PathsConfig.ConfigDir>/assistant-tokens.json.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Get returns the stored API key for provider, or "" if none is set.
func (s *TokenStore) Get(provider string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readLocked()
	if err != nil {
		return "", err
	}
	key := gjson.GetBytes(raw, provider+".apiKey")
	if !key.Exists() {
		return "", nil
	}
	return key.String(), nil
}

// Set stores apiKey under provider, preserving every other provider's
// entry already present in the file.
func (s *TokenStore) Set(provider, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readLocked()
	if err != nil {
		return err
	}

	updated, err := sjson.SetBytes(raw, provider+".apiKey", apiKey)
	if err != nil {
		return fmt.Errorf("assistant: set token: %w", err)
	}

	return s.writeLocked(updated)
}

// Clear removes provider's stored credential, if any.
func (s *TokenStore) Clear(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readLocked()
	if err != nil {
		return err
	}

	updated, err := sjson.DeleteBytes(raw, provider)
	if err != nil {
		return fmt.Errorf("assistant: clear token: %w", err)
	}

	return s.writeLocked(updated)
}

func (s *TokenStore) readLocked() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("assistant: read token store: %w", err)
	}
	return data, nil
}

func (s *TokenStore) writeLocked(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("assistant: create token store dir: %w", err)
	}
	formatted := pretty.Pretty(data)
	if err := os.WriteFile(s.path, formatted, 0o600); err != nil {
		return fmt.Errorf("assistant: write token store: %w", err)
	}
	return nil
}
