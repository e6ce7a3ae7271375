package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// configReloadedMsg carries a freshly loaded configuration to the TUI.
type configReloadedMsg struct {
	config *Config
}

// ConfigWatcher reloads the configuration when one of the config files
// changes. Directories are watched rather than files so editors that save by
// rename are still seen.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	onReload func(*Config)
	load     func() (*Config, error)

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// NewConfigWatcher watches the given config files. Missing parent
// directories are skipped.
func NewConfigWatcher(paths []string, onReload func(*Config)) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	cw := &ConfigWatcher{
		watcher:  w,
		files:    make(map[string]struct{}),
		debounce: 200 * time.Millisecond,
		onReload: onReload,
		load:     LoadConfig,
		done:     make(chan struct{}),
	}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		cw.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := w.Add(dir); err != nil {
			slog.Warn("config.watch_failed", "dir", dir, "error", err)
		}
	}
	go cw.run()
	return cw, nil
}

// defaultConfigPaths lists the files LoadConfig reads.
func defaultConfigPaths() []string {
	paths := []string{projectConfigPath()}
	if p, err := userConfigPath(); err == nil {
		paths = append(paths, p)
	}
	return paths
}

func (cw *ConfigWatcher) run() {
	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := cw.files[abs]; ok {
				cw.schedule()
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config.watch_error", "error", err)
		}
	}
}

// schedule coalesces bursts of events into one reload.
func (cw *ConfigWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, cw.reload)
}

func (cw *ConfigWatcher) reload() {
	config, err := cw.load()
	if err != nil {
		slog.Warn("config.reload_failed", "error", err)
		return
	}
	slog.Info("config.reloaded")
	if cw.onReload != nil {
		cw.onReload(config)
	}
}

// Close stops watching.
func (cw *ConfigWatcher) Close() error {
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	select {
	case <-cw.done:
	default:
		close(cw.done)
	}
	return cw.watcher.Close()
}
