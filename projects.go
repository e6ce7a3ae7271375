package main

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Project groups chats in the sidebar.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Expanded bool   `json:"expanded"`
}

// ProjectStore owns the ordered project collection.
type ProjectStore struct {
	mu        sync.Mutex
	projects  []Project
	store     *persister
	observers []func([]Project)
}

// NewProjectStore creates an empty store backed by p. A nil persister keeps
// everything in memory.
func NewProjectStore(p *persister) *ProjectStore {
	return &ProjectStore{store: p}
}

// Load replaces the collection with the persisted one.
func (s *ProjectStore) Load() error {
	var projects []Project
	if _, err := s.store.loadJSON(keyProjects, &projects); err != nil {
		return err
	}
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return nil
}

// OnChange registers fn to run after every mutation with the new collection.
func (s *ProjectStore) OnChange(fn func([]Project)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Create appends a new expanded project. Blank names are ignored.
func (s *ProjectStore) Create(name string) (Project, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, false
	}
	p := Project{ID: uuid.NewString(), Name: name, Expanded: true}
	s.mutate(func(projects []Project) []Project {
		return append(projects, p)
	})
	return p, true
}

// Toggle flips the expanded flag of id.
func (s *ProjectStore) Toggle(id string) {
	s.mutate(func(projects []Project) []Project {
		for i := range projects {
			if projects[i].ID == id {
				projects[i].Expanded = !projects[i].Expanded
				return projects
			}
		}
		return nil
	})
}

// Rename sets a new name unless it trims to empty.
func (s *ProjectStore) Rename(id, newName string) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return
	}
	s.mutate(func(projects []Project) []Project {
		for i := range projects {
			if projects[i].ID == id {
				if projects[i].Name == newName {
					return nil
				}
				projects[i].Name = newName
				return projects
			}
		}
		return nil
	})
}

// Delete removes the project. Chats that referenced it are cleared by the
// OnChange observers.
func (s *ProjectStore) Delete(id string) {
	s.mutate(func(projects []Project) []Project {
		out := make([]Project, 0, len(projects))
		for _, p := range projects {
			if p.ID != id {
				out = append(out, p)
			}
		}
		if len(out) == len(projects) {
			return nil
		}
		return out
	})
}

// List returns a copy of the projects in insertion order.
func (s *ProjectStore) List() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]Project, 0, len(s.projects)), s.projects...)
}

// Get looks up a project by id.
func (s *ProjectStore) Get(id string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// FindByName returns the first project whose name matches case-insensitively.
func (s *ProjectStore) FindByName(name string) (Project, bool) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Project{}, false
}

// Save persists the collection as is.
func (s *ProjectStore) Save() error {
	return s.store.saveJSON(keyProjects, s.List())
}

// mutate applies fn to a copy of the collection. fn returns nil when nothing
// changed, in which case nothing is written and no observer runs.
func (s *ProjectStore) mutate(fn func([]Project) []Project) {
	s.mu.Lock()
	next := fn(append([]Project(nil), s.projects...))
	if next == nil {
		s.mu.Unlock()
		return
	}
	s.projects = next
	snapshot := append(make([]Project, 0, len(next)), next...)
	observers := append(([]func([]Project))(nil), s.observers...)
	s.mu.Unlock()

	_ = s.store.saveJSON(keyProjects, snapshot)
	for _, fn := range observers {
		fn(snapshot)
	}
}
