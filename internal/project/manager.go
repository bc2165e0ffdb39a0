package project

import (
	"context"
	"fmt"
	"sync"
)

// Manager is the process-wide singleton that owns every currently-open
// Project, keyed by canonical root path. A directory opened twice
// returns the same Project rather than constructing a second one.
type Manager struct {
	mu       sync.Mutex
	projects map[string]*Project
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{projects: make(map[string]*Project)}
}

// Open returns the already-open Project for directory if one exists, or
// builds and registers a new one.
func (m *Manager) Open(ctx context.Context, directory string) (*Project, error) {
	root, err := CanonicalPath(directory)
	if err != nil {
		return nil, fmt.Errorf("manager: canonicalize %q: %w", directory, err)
	}

	m.mu.Lock()
	if existing, ok := m.projects[root]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	p, err := Open(ctx, directory)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.projects[root]; ok {
		// Lost a race with a concurrent Open for the same directory; keep
		// the winner and discard the project we just built.
		_ = p.Close()
		return existing, nil
	}
	m.projects[root] = p
	return p, nil
}

// Get returns the Project open at canonicalRoot, if any.
func (m *Manager) Get(canonicalRoot string) (*Project, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[canonicalRoot]
	return p, ok
}

// Close closes and forgets the Project open at canonicalRoot. Closing an
// unknown root is a no-op.
func (m *Manager) Close(canonicalRoot string) error {
	m.mu.Lock()
	p, ok := m.projects[canonicalRoot]
	if ok {
		delete(m.projects, canonicalRoot)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return p.Close()
}

// CloseAll closes every open project, for process shutdown.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	projects := make([]*Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	m.projects = make(map[string]*Project)
	m.mu.Unlock()

	var firstErr error
	for _, p := range projects {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
