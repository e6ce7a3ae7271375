package main

import (
	"log/slog"
	"strings"
	"sync"
)

// DefaultModelFallback is used when neither the store nor the config names a
// default model.
const DefaultModelFallback = "openai/gpt-4o"

// ThemeName is the UI color scheme.
type ThemeName string

const (
	ThemeLight ThemeName = "light"
	ThemeDark  ThemeName = "dark"
)

func parseTheme(s string) ThemeName {
	switch ThemeName(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark
	default:
		return ThemeLight
	}
}

// Settings are the process-wide user preferences.
type Settings struct {
	APIKey       string
	DefaultModel string
	Theme        ThemeName
}

// SettingsStore loads and writes Settings. The API key lives in the OS
// keyring when one is available and falls back to the key/value store.
type SettingsStore struct {
	mu       sync.Mutex
	current  Settings
	store    *persister
	provider string
	config   *Config
}

// NewSettingsStore creates a store for the given provider's credentials.
func NewSettingsStore(p *persister, config *Config) *SettingsStore {
	return &SettingsStore{
		store:    p,
		provider: configProvider(config),
		config:   config,
		current:  Settings{DefaultModel: DefaultModelFallback, Theme: ThemeLight},
	}
}

func configProvider(config *Config) string {
	if config != nil && config.LLM.Provider != "" {
		return config.LLM.Provider
	}
	return "openrouter"
}

// apiKeyStoreKey is where the key is kept when no keyring is available. The
// OpenRouter key shares its slot with the web client.
func apiKeyStoreKey(provider string) string {
	if provider == "openrouter" {
		return keyAPIKey
	}
	return keyAPIKey + "-" + provider
}

func (s *SettingsStore) loadAPIKey(provider string, config *Config) (string, error) {
	apiKey, err := GetAPIKeyFromKeyring(provider)
	if err != nil {
		slog.Warn("settings.keyring_unavailable", "error", err)
	}
	if apiKey == "" {
		if apiKey, err = s.store.loadString(apiKeyStoreKey(provider)); err != nil {
			return "", err
		}
	}
	if apiKey == "" && config != nil {
		apiKey = config.LLM.APIKey
	}
	return strings.TrimSpace(apiKey), nil
}

// Load reads every setting once.
func (s *SettingsStore) Load() error {
	apiKey, err := s.loadAPIKey(s.provider, s.config)
	if err != nil {
		return err
	}

	model, err := s.store.loadString(keyDefaultModel)
	if err != nil {
		return err
	}
	if model == "" && s.config != nil {
		model = s.config.LLM.Model
	}
	if model == "" {
		model = DefaultModelFallback
	}

	theme, err := s.store.loadString(keyTheme)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = Settings{
		APIKey:       apiKey,
		DefaultModel: model,
		Theme:        parseTheme(theme),
	}
	s.mu.Unlock()
	return nil
}

// SetProvider points the API key at the credentials of config's provider.
// A key saved for one backend is never sent to another.
func (s *SettingsStore) SetProvider(config *Config) error {
	provider := configProvider(config)
	apiKey, err := s.loadAPIKey(provider, config)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.provider = provider
	s.config = config
	s.current.APIKey = apiKey
	s.mu.Unlock()
	slog.Info("settings.provider_changed", "provider", provider, "has_key", apiKey != "")
	return nil
}

// Provider names the backend whose key is in use.
func (s *SettingsStore) Provider() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider
}

// Get returns a copy of the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// APIKey returns the configured key, empty when none is set.
func (s *SettingsStore) APIKey() string {
	return s.Get().APIKey
}

// DefaultModel returns the model used by chats without an override.
func (s *SettingsStore) DefaultModel() string {
	return s.Get().DefaultModel
}

// SetAPIKey stores key, or clears it when key is blank.
func (s *SettingsStore) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	s.mu.Lock()
	s.current.APIKey = key
	provider := s.provider
	s.mu.Unlock()
	storeKey := apiKeyStoreKey(provider)

	if key == "" {
		if err := DeleteAPIKeyFromKeyring(provider); err != nil {
			slog.Warn("settings.keyring_delete_failed", "error", err)
		}
		return s.store.saveString(storeKey, "")
	}

	if err := SaveAPIKeyToKeyring(provider, key); err != nil {
		slog.Warn("settings.keyring_save_failed", "fallback", "store", "error", err)
		return s.store.saveString(storeKey, key)
	}
	// Do not leave a plaintext copy behind once the keyring has it.
	return s.store.saveString(storeKey, "")
}

// SetDefaultModel changes the model used by chats without an override.
func (s *SettingsStore) SetDefaultModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModelFallback
	}
	s.mu.Lock()
	s.current.DefaultModel = model
	s.mu.Unlock()
	return s.store.saveString(keyDefaultModel, model)
}

// SetTheme switches the color scheme.
func (s *SettingsStore) SetTheme(theme ThemeName) error {
	theme = parseTheme(string(theme))
	s.mu.Lock()
	s.current.Theme = theme
	s.mu.Unlock()
	return s.store.saveString(keyTheme, string(theme))
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *SettingsStore) ToggleTheme() (ThemeName, error) {
	next := ThemeDark
	if s.Get().Theme == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(next)
}

// Save writes every setting except the API key, which is written on change.
func (s *SettingsStore) Save() error {
	cur := s.Get()
	if err := s.store.saveString(keyDefaultModel, cur.DefaultModel); err != nil {
		return err
	}
	return s.store.saveString(keyTheme, string(cur.Theme))
}
