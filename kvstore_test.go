package main

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory KVStore. Setting failWrites makes every write
// fail, which is how tests simulate a full disk.
type memStore struct {
	mu         sync.Mutex
	data       map[string]string
	failWrites bool
	writes     int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

var errDiskFull = errors.New("disk full")

func (s *memStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errDiskFull
	}
	s.writes++
	s.data[key] = value
	return nil
}

func (s *memStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errDiskFull
	}
	s.writes++
	delete(s.data, key)
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) setFailing(fail bool) {
	s.mu.Lock()
	s.failWrites = fail
	s.mu.Unlock()
}

func (s *memStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func TestKVStoreBackends(t *testing.T) {
	backends := []struct {
		name string
		open func(path string) (KVStore, error)
		file string
	}{
		{"file", func(p string) (KVStore, error) { return newFileStore(p) }, "store.json"},
		{"sqlite", func(p string) (KVStore, error) { return newSQLiteStore(p) }, "store.db"},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), b.file)
			store, err := b.open(path)
			require.NoError(t, err)

			_, ok, err := store.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(keyTheme, "dark"))
			require.NoError(t, store.Set(keyChats, `[{"id":"1"}]`))
			require.NoError(t, store.Set(keyTheme, "light"))
			require.NoError(t, store.Remove(keyChats))
			require.NoError(t, store.Remove("never-set"))
			require.NoError(t, store.Close())

			reopened, err := b.open(path)
			require.NoError(t, err)
			defer reopened.Close()

			v, ok, err := reopened.Get(keyTheme)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "light", v)

			_, ok, err = reopened.Get(keyChats)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStoreToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := newFileStore(path)
	require.NoError(t, err)

	_, ok, err := store.Get(keyChats)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(keyChats, "[]"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), keyChats)
}

func TestOpenKVStore(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenKVStore(StorageConfig{Backend: "json", Path: filepath.Join(dir, "nested", "s.json")})
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Close())
	assert.FileExists(t, filepath.Join(dir, "nested", "s.json"))

	store, err = OpenKVStore(StorageConfig{Backend: "sqlite", Path: filepath.Join(dir, "s.db")})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = OpenKVStore(StorageConfig{Backend: "redis", Path: filepath.Join(dir, "x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage backend")
}

func TestOpenKVStoreDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := OpenKVStore(StorageConfig{Backend: "sqlite"})
	require.NoError(t, err)
	defer store.Close()
	assert.FileExists(t, filepath.Join(home, ".local", "share", appName, "store.db"))
}

func TestPersister(t *testing.T) {
	kv := newMemStore()
	var failures []string
	p := &persister{kv: kv, onError: func(key string, err error) {
		failures = append(failures, key)
	}}

	require.NoError(t, p.saveJSON(keyProjects, []Project{{ID: "p1", Name: "Work"}}))
	var projects []Project
	found, err := p.loadJSON(keyProjects, &projects)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Work", projects[0].Name)

	require.NoError(t, p.saveString(keyTheme, "dark"))
	require.NoError(t, p.saveString(keyTheme, ""))
	_, ok := kv.value(keyTheme)
	assert.False(t, ok, "an empty string removes the key")

	kv.data[keyChats] = "garbage"
	var chats []Chat
	found, err = p.loadJSON(keyChats, &chats)
	require.NoError(t, err)
	assert.False(t, found)

	kv.setFailing(true)
	err = p.saveJSON(keyProjects, []Project{})
	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, []string{keyProjects}, failures)
}

func TestNilPersisterIsInMemory(t *testing.T) {
	var p *persister
	require.NoError(t, p.saveJSON(keyChats, []Chat{}))
	require.NoError(t, p.saveString(keyTheme, "dark"))
	found, err := p.loadJSON(keyChats, &[]Chat{})
	require.NoError(t, err)
	assert.False(t, found)
}
