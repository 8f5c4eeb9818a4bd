package assistant

import (
	"fmt"
	"path/filepath"
)

// tokenStoreFileName is the credential file name under the editor's
// config directory.
const tokenStoreFileName = "assistant-tokens.json"

// Config is the subset of editor configuration an Agent needs. It mirrors
// internal/config's AIConfig and PathsConfig rather than importing that
// package directly, so assistant has no dependency on the config loader.
type Config struct {
	Enabled     bool
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	ConfigDir   string
}

// NewAgentFromConfig builds a TokenStore-backed Agent for the provider
// named in cfg.Provider, reading any stored credential from
// <cfg.ConfigDir>/assistant-tokens.json. If no credential is stored, the
// returned Agent's Status() reports SignedIn=false; callers should surface
// that as a sign-in prompt rather than treat it as a fatal error.
func NewAgentFromConfig(cfg Config, log Logger) (*Agent, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("assistant: disabled in configuration")
	}

	store := NewTokenStore(filepath.Join(cfg.ConfigDir, tokenStoreFileName))
	apiKey, err := store.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}

	provider, err := NewProvider(cfg.Provider, cfg.Model, apiKey)
	if err != nil {
		return nil, err
	}

	return NewAgent(provider, store, log), nil
}
