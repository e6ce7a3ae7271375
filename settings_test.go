package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newTestSettings(t *testing.T, config *Config) (*SettingsStore, *memStore) {
	t.Helper()
	keyring.MockInit()
	kv := newMemStore()
	s := NewSettingsStore(&persister{kv: kv}, config)
	require.NoError(t, s.Load())
	return s, kv
}

func TestSettingsDefaults(t *testing.T) {
	s, _ := newTestSettings(t, nil)

	cur := s.Get()
	assert.Empty(t, cur.APIKey)
	assert.Equal(t, DefaultModelFallback, cur.DefaultModel)
	assert.Equal(t, ThemeLight, cur.Theme)
}

func TestSettingsFallBackToConfig(t *testing.T) {
	config := defaultConfig()
	config.LLM.APIKey = "sk-from-config"
	config.LLM.Model = "anthropic/claude-3-haiku"

	s, _ := newTestSettings(t, &config)
	assert.Equal(t, "sk-from-config", s.APIKey())
	assert.Equal(t, "anthropic/claude-3-haiku", s.DefaultModel())
}

func TestSettingsAPIKeyUsesKeyring(t *testing.T) {
	s, kv := newTestSettings(t, nil)

	require.NoError(t, s.SetAPIKey("  sk-or-123  "))
	assert.Equal(t, "sk-or-123", s.APIKey())

	stored, err := GetAPIKeyFromKeyring("openrouter")
	require.NoError(t, err)
	assert.Equal(t, "sk-or-123", stored)
	_, inStore := kv.value(keyAPIKey)
	assert.False(t, inStore, "no plaintext copy once the keyring has the key")

	reloaded := NewSettingsStore(&persister{kv: kv}, nil)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "sk-or-123", reloaded.APIKey())

	require.NoError(t, s.SetAPIKey(""))
	assert.Empty(t, s.APIKey())
	stored, err = GetAPIKeyFromKeyring("openrouter")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSettingsAPIKeyFallsBackToStore(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keyring daemon"))
	kv := newMemStore()
	s := NewSettingsStore(&persister{kv: kv}, nil)
	require.NoError(t, s.Load())

	require.NoError(t, s.SetAPIKey("sk-or-456"))
	raw, ok := kv.value(keyAPIKey)
	require.True(t, ok)
	assert.Equal(t, "sk-or-456", raw)

	reloaded := NewSettingsStore(&persister{kv: kv}, nil)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "sk-or-456", reloaded.APIKey())
}

func TestSettingsKeyFollowsProvider(t *testing.T) {
	s, _ := newTestSettings(t, nil)
	require.NoError(t, s.SetAPIKey("sk-or"))

	anthropic := defaultConfig()
	anthropic.LLM.Provider = "anthropic"
	require.NoError(t, s.SetProvider(&anthropic))
	assert.Equal(t, "anthropic", s.Provider())
	assert.Empty(t, s.APIKey(), "the OpenRouter key is not reused")

	require.NoError(t, s.SetAPIKey("sk-ant"))
	stored, err := GetAPIKeyFromKeyring("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", stored)

	openrouter := defaultConfig()
	require.NoError(t, s.SetProvider(&openrouter))
	assert.Equal(t, "sk-or", s.APIKey())
}

func TestSettingsStoreFallbackIsPerProvider(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keyring daemon"))
	kv := newMemStore()
	anthropic := defaultConfig()
	anthropic.LLM.Provider = "anthropic"
	s := NewSettingsStore(&persister{kv: kv}, &anthropic)
	require.NoError(t, s.Load())

	require.NoError(t, s.SetAPIKey("sk-ant"))
	raw, ok := kv.value(keyAPIKey + "-anthropic")
	require.True(t, ok)
	assert.Equal(t, "sk-ant", raw)
	_, ok = kv.value(keyAPIKey)
	assert.False(t, ok, "the web client's slot holds only the OpenRouter key")
}

func TestSettingsModelAndTheme(t *testing.T) {
	s, kv := newTestSettings(t, nil)

	require.NoError(t, s.SetDefaultModel("google/gemini-pro"))
	require.NoError(t, s.SetTheme(ThemeDark))

	raw, _ := kv.value(keyDefaultModel)
	assert.Equal(t, "google/gemini-pro", raw)
	raw, _ = kv.value(keyTheme)
	assert.Equal(t, "dark", raw)

	next, err := s.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)

	require.NoError(t, s.SetDefaultModel("  "))
	assert.Equal(t, DefaultModelFallback, s.DefaultModel())
}

func TestParseTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, parseTheme("DARK"))
	assert.Equal(t, ThemeLight, parseTheme("light"))
	assert.Equal(t, ThemeLight, parseTheme("solarized"))
}

func TestSettingsWriteFailureReported(t *testing.T) {
	keyring.MockInit()
	kv := newMemStore()
	var failed []string
	s := NewSettingsStore(&persister{kv: kv, onError: func(key string, err error) {
		failed = append(failed, key)
	}}, nil)
	require.NoError(t, s.Load())

	kv.setFailing(true)
	err := s.SetTheme(ThemeDark)
	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, ThemeDark, s.Get().Theme, "memory stays authoritative")
	assert.Equal(t, []string{keyTheme}, failed)
}
