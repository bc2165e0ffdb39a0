// Package registry implements the project-scoped name<->id bijection over
// currently-registered agents, publishing change notifications on an
// event.Bus so the UI can mirror state without polling.
package registry

import (
	"sort"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/orcherr"
)

// Agent is the minimal surface the registry needs from a registered
// participant: a stable id and a display name unique within the project.
type Agent interface {
	ID() string
	Name() string
}

// Registry holds the authoritative id->agent and name->id bindings for
// one project. Every operation is atomic with respect to other registry
// operations: readers never observe a half-inserted or half-removed
// agent.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]Agent
	nameToID map[string]string
	bus      *event.Bus
}

// New creates an empty registry publishing on bus.
func New(bus *event.Bus) *Registry {
	return &Registry{
		byID:     make(map[string]Agent),
		nameToID: make(map[string]string),
		bus:      bus,
	}
}

// Register inserts agent, failing if its name is already taken. On
// success it publishes exactly one AgentAdded event.
func (r *Registry) Register(a Agent) error {
	r.mu.Lock()
	if _, taken := r.nameToID[a.Name()]; taken {
		r.mu.Unlock()
		return &orcherr.NameAlreadyExistsError{Name: a.Name()}
	}
	r.byID[a.ID()] = a
	r.nameToID[a.Name()] = a.ID()
	r.mu.Unlock()

	r.bus.PublishSync(event.Event{Type: event.AgentAdded, Data: event.AgentAddedData{ID: a.ID(), Name: a.Name()}})
	return nil
}

// Remove deletes the agent with id, failing if absent. On success it
// publishes exactly one AgentRemoved event.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	a, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return &orcherr.AgentNotFoundError{ID: id, Suggestion: r.suggestLocked(id)}
	}
	delete(r.byID, id)
	delete(r.nameToID, a.Name())
	r.mu.Unlock()

	r.bus.PublishSync(event.Event{Type: event.AgentRemoved, Data: event.AgentRemovedData{ID: a.ID(), Name: a.Name()}})
	return nil
}

// Get returns the agent with id, or an AgentNotFoundError.
func (r *Registry) Get(id string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, &orcherr.AgentNotFoundError{ID: id, Suggestion: r.suggestLocked(id)}
	}
	return a, nil
}

// GetByName returns the agent with the given display name, or an
// AgentNotFoundError carrying a "did you mean" suggestion.
func (r *Registry) GetByName(name string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.nameToID[name]
	if !ok {
		return nil, &orcherr.AgentNotFoundError{Name: name, Suggestion: r.suggestNameLocked(name)}
	}
	return r.byID[id], nil
}

// All returns every registered agent in unspecified order.
func (r *Registry) All() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// IsNameTaken reports whether name is currently bound to an agent.
func (r *Registry) IsNameTaken(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, taken := r.nameToID[name]
	return taken
}

// Clear removes every agent without publishing per-agent events; used by
// Project.Close to tear the registry down in one step.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]Agent)
	r.nameToID = make(map[string]string)
}

// suggestLocked finds the closest registered id by name distance; ids
// are opaque so this falls back to a name-only suggestion and is best
// effort. Callers hold r.mu already.
func (r *Registry) suggestLocked(id string) string {
	return r.suggestNameLocked(id)
}

// suggestNameLocked returns the registered name with the smallest edit
// distance to query, or "" if the registry is empty. Advisory only: it
// never changes control flow.
func (r *Registry) suggestNameLocked(query string) string {
	names := make([]string, 0, len(r.nameToID))
	for name := range r.nameToID {
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names) // deterministic tie-breaking

	best := names[0]
	bestDist := levenshtein.ComputeDistance(query, best)
	for _, name := range names[1:] {
		d := levenshtein.ComputeDistance(query, name)
		if d < bestDist {
			bestDist = d
			best = name
		}
	}
	return best
}
