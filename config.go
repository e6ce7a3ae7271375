package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	koanfenv "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

const (
	appName   = "orchat"
	envPrefix = "ORCHAT_"
)

// Config represents the application configuration structure
type Config struct {
	LLM     LLMConfig     `koanf:"llm"`
	Storage StorageConfig `koanf:"storage"`
	Reveal  RevealConfig  `koanf:"reveal"`
	UI      UIConfig      `koanf:"ui"`
	Logging LoggingConfig `koanf:"logging"`
}

// LLMConfig holds the completion backend configuration
type LLMConfig struct {
	Provider          string   `koanf:"provider"`
	Model             string   `koanf:"model"`
	APIKey            string   `koanf:"api_key"`
	BaseURL           string   `koanf:"base_url"`
	TimeoutSeconds    int      `koanf:"timeout_seconds"`
	RequestsPerMinute int      `koanf:"requests_per_minute"`
	Referer           string   `koanf:"referer"`
	Title             string   `koanf:"title"`
	FakeResponses     []string `koanf:"fake_responses"`
}

// Timeout returns the per-turn deadline; zero means none.
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig selects the key/value backend
type StorageConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

// RevealConfig controls how replies are uncovered
type RevealConfig struct {
	Mode       string `koanf:"mode"`
	MinDelayMs int    `koanf:"min_delay_ms"`
	MaxDelayMs int    `koanf:"max_delay_ms"`
}

// Delays returns the reveal pause bounds.
func (c RevealConfig) Delays() (time.Duration, time.Duration) {
	lo := time.Duration(max(c.MinDelayMs, 0)) * time.Millisecond
	hi := time.Duration(max(c.MaxDelayMs, 0)) * time.Millisecond
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// UIConfig holds presentation settings
type UIConfig struct {
	SidebarWidth int  `koanf:"sidebar_width"`
	Markdown     bool `koanf:"markdown"`
	WatchConfig  bool `koanf:"watch_config"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// defaultConfig returns the configuration populated with sensible defaults.
func defaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       "openrouter",
			Model:          DefaultModelFallback,
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: 120,
		},
		Storage: StorageConfig{Backend: "sqlite"},
		Reveal: RevealConfig{
			Mode:       string(RevealWord),
			MinDelayMs: 30,
			MaxDelayMs: 100,
		},
		UI: UIConfig{
			SidebarWidth: 28,
			Markdown:     true,
			WatchConfig:  true,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// userConfigPath is ~/.config/orchat/conf.toml.
func userConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conf.toml"), nil
}

// projectConfigPath is .orchat/conf.toml relative to the working directory.
func projectConfigPath() string {
	return filepath.Join("."+appName, "conf.toml")
}

// LoadConfig loads configuration from multiple sources
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if path, err := userConfigPath(); err != nil {
		slog.Warn("config.home_unavailable", "error", err)
	} else if err := loadTOMLIfExists(k, path); err != nil {
		slog.Warn("config.load_failed", "path", path, "error", err)
	}

	if err := loadTOMLIfExists(k, projectConfigPath()); err != nil {
		slog.Warn("config.load_failed", "path", projectConfigPath(), "error", err)
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config.dotenv_failed", "error", err)
	}

	// ORCHAT_LLM_MODEL becomes "llm.model". Only the first underscore after
	// the section separates levels so keys like timeout_seconds survive.
	if err := k.Load(koanfenv.Provider(".", koanfenv.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			key = strings.Replace(key, "_", ".", 1)
			return key, value
		},
	}), nil); err != nil {
		slog.Warn("config.env_failed", "error", err)
	}

	if provider := k.String("llm.provider"); k.String("llm.api_key") == "" && (provider == "" || strings.EqualFold(provider, "openrouter")) {
		if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
			if err := k.Set("llm.api_key", key); err != nil {
				slog.Warn("config.env_failed", "var", "OPENROUTER_API_KEY", "error", err)
			}
		}
	}

	config := defaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.normalize()
	return &config, nil
}

func loadTOMLIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return k.Load(file.Provider(path), koanftoml.Parser())
}

// normalize repairs values a hand edited file may leave invalid.
func (c *Config) normalize() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openrouter"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModelFallback
	}
	if c.LLM.TimeoutSeconds < 0 {
		c.LLM.TimeoutSeconds = 0
	}
	if c.LLM.RequestsPerMinute < 0 {
		c.LLM.RequestsPerMinute = 0
	}
	c.Reveal.Mode = string(parseRevealMode(c.Reveal.Mode))
	if c.UI.SidebarWidth < 12 {
		c.UI.SidebarWidth = 12
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
}

// SaveConfig saves the provider and model to the project-level conf.toml file
func SaveConfig(config *Config) error {
	path := projectConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	k := koanf.New(".")
	if err := loadTOMLIfExists(k, path); err != nil {
		return fmt.Errorf("failed to load existing project config: %w", err)
	}

	if err := k.Set("llm.provider", config.LLM.Provider); err != nil {
		return fmt.Errorf("failed to update provider in config: %w", err)
	}
	if err := k.Set("llm.model", config.LLM.Model); err != nil {
		return fmt.Errorf("failed to update model in config: %w", err)
	}

	data, err := k.Marshal(koanftoml.Parser())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
