package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// App bundles the stores and the engine for one process.
type App struct {
	Config   *Config
	KV       KVStore
	Settings *SettingsStore
	Projects *ProjectStore
	Chats    *ChatStore
	History  *InputHistory
	Engine   *Engine

	mu             sync.Mutex
	onPersistError func(key string, err error)
}

// LoadApp opens the configured store and loads every collection from it.
func LoadApp(config *Config) (*App, error) {
	kv, err := OpenKVStore(config.Storage)
	if err != nil {
		return nil, err
	}
	app, err := NewApp(config, kv)
	if err != nil {
		kv.Close()
		return nil, err
	}
	return app, nil
}

// NewApp builds the application on top of an already open store.
func NewApp(config *Config, kv KVStore) (*App, error) {
	client, err := NewCompletionClient(config)
	if err != nil {
		return nil, err
	}

	app := &App{Config: config, KV: kv}
	p := &persister{kv: kv, onError: app.persistFailed}

	app.Settings = NewSettingsStore(p, config)
	app.Projects = NewProjectStore(p)
	app.Chats = NewChatStore(p)
	app.History = NewInputHistory(p)

	for name, load := range map[string]func() error{
		"settings": app.Settings.Load,
		"projects": app.Projects.Load,
		"chats":    app.Chats.Load,
		"history":  app.History.Load,
	} {
		if err := load(); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}

	// Chats loaded from an older store may point at projects that no
	// longer exist.
	app.Chats.SyncProjects(app.Projects.List())
	app.Projects.OnChange(app.Chats.SyncProjects)

	app.Engine = NewEngine(app.Chats, app.Settings, client, config.LLM.Timeout())

	slog.Info("app.loaded",
		"projects", len(app.Projects.List()),
		"chats", len(app.Chats.List()),
		"history", len(app.History.Entries()),
		"provider", config.LLM.Provider)
	return app, nil
}

// OnPersistError registers the handler for write failures.
func (a *App) OnPersistError(fn func(key string, err error)) {
	a.mu.Lock()
	a.onPersistError = fn
	a.mu.Unlock()
}

func (a *App) persistFailed(key string, err error) {
	a.mu.Lock()
	fn := a.onPersistError
	a.mu.Unlock()
	if fn != nil {
		fn(key, err)
	}
}

// ApplyConfig switches to a reloaded configuration. Storage settings only
// take effect on restart.
func (a *App) ApplyConfig(config *Config) error {
	client, err := NewCompletionClient(config)
	if err != nil {
		return err
	}
	config.Storage = a.Config.Storage
	if err := a.Settings.SetProvider(config); err != nil {
		return err
	}
	a.Config = config
	a.Engine.SetClient(client)
	a.Engine.SetTimeout(config.LLM.Timeout())
	return nil
}

// Flush rewrites every collection.
func (a *App) Flush() error {
	return errors.Join(
		a.Settings.Save(),
		a.Projects.Save(),
		a.Chats.Save(),
		a.History.Flush(),
	)
}

// Close flushes and releases the store.
func (a *App) Close() error {
	a.Engine.Cancel()
	err := a.Flush()
	return errors.Join(err, a.KV.Close())
}
