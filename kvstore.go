package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Keys used in the persistent store. They match the keys written by the
// web client so an exported local storage dump can be imported as is.
const (
	keyChats        = "chatgpt-chats"
	keyProjects     = "chatgpt-projects"
	keyInputHistory = "chat-input-history"
	keyAPIKey       = "openrouter-api-key"
	keyDefaultModel = "selected-model"
	keyTheme        = "theme"
	keyActiveChat   = "orchat-active-chat"
)

// KVStore is a durable string key/value store.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// OpenKVStore opens the store backend selected in the configuration.
func OpenKVStore(cfg StorageConfig) (KVStore, error) {
	path, err := expandHome(cfg.Path)
	if err != nil {
		return nil, err
	}
	backend := strings.ToLower(cfg.Backend)
	if path == "" {
		path, err = defaultStorePath(backend)
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch backend {
	case "", "sqlite":
		return newSQLiteStore(path)
	case "file", "json":
		return newFileStore(path)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func defaultStorePath(backend string) (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	if backend == "file" || backend == "json" {
		return filepath.Join(dir, "store.json"), nil
	}
	return filepath.Join(dir, "store.db"), nil
}

// fileStore keeps every key in a single JSON object on disk.
type fileStore struct {
	mu       sync.Mutex
	filePath string
	data     map[string]string
}

func newFileStore(path string) (*fileStore, error) {
	s := &fileStore{filePath: path, data: map[string]string{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// A damaged store should not lock the user out of the app.
		slog.Warn("store.parse_failed", "path", path, "error", err)
		s.data = map[string]string{}
	}
	return s, nil
}

func (s *fileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data[key]
	s.data[key] = value
	if err := s.writeLocked(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *fileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.writeLocked(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

func (s *fileStore) Close() error { return nil }

// writeLocked rewrites the whole file. Write to a temporary file first, then
// rename so a crash never leaves a half-written store behind.
func (s *fileStore) writeLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename store file: %w", err)
	}
	return nil
}

// persister serializes collections into the store. Failures are logged and
// handed to onError; the in-memory state stays authoritative for the session.
type persister struct {
	kv      KVStore
	onError func(key string, err error)
}

func (p *persister) saveJSON(key string, v any) error {
	if p == nil || p.kv == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return p.fail(key, fmt.Errorf("failed to marshal %s: %w", key, err))
	}
	if err := p.kv.Set(key, string(raw)); err != nil {
		return p.fail(key, err)
	}
	return nil
}

func (p *persister) saveString(key, value string) error {
	if p == nil || p.kv == nil {
		return nil
	}
	var err error
	if value == "" {
		err = p.kv.Remove(key)
	} else {
		err = p.kv.Set(key, value)
	}
	if err != nil {
		return p.fail(key, err)
	}
	return nil
}

// loadJSON decodes key into v. It reports whether the key was present and
// decodable; a corrupt value is logged and treated as absent.
func (p *persister) loadJSON(key string, v any) (bool, error) {
	if p == nil || p.kv == nil {
		return false, nil
	}
	raw, ok, err := p.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		slog.Warn("store.decode_failed", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (p *persister) loadString(key string) (string, error) {
	if p == nil || p.kv == nil {
		return "", nil
	}
	v, _, err := p.kv.Get(key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

func (p *persister) fail(key string, err error) error {
	slog.Error("store.persist_failed", "key", key, "error", err)
	if p.onError != nil {
		p.onError(key, err)
	}
	return err
}
