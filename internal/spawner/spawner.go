// Package spawner implements summon/register/dismiss: the only path by
// which servitors enter or leave a project's registry, keeping name
// reservation and registry insertion atomic with respect to each other.
package spawner

import (
	"context"

	"github.com/loupgaroublond/tavern/internal/agentcore"
	"github.com/loupgaroublond/tavern/internal/commitment"
	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/namepool"
	"github.com/loupgaroublond/tavern/internal/orcherr"
	"github.com/loupgaroublond/tavern/internal/registry"
	"github.com/loupgaroublond/tavern/internal/storage"
)

// Spawner summons and dismisses servitors for one project, coordinating
// the namepool.Generator and registry.Registry so a half-finished
// summon never leaks a name reservation or a registry entry.
type Spawner struct {
	names     *namepool.Generator
	reg       *registry.Registry
	bus       *event.Bus
	store     *storage.SessionStore
	messenger agentcore.Messenger
	evaluator commitment.Evaluator
	workDir   string
}

// New builds a Spawner wired to one project's shared name pool,
// registry, event bus, session store, messenger, and commitment
// evaluator.
func New(names *namepool.Generator, reg *registry.Registry, bus *event.Bus, store *storage.SessionStore, messenger agentcore.Messenger, evaluator commitment.Evaluator, workDir string) *Spawner {
	return &Spawner{
		names:     names,
		reg:       reg,
		bus:       bus,
		store:     store,
		messenger: messenger,
		evaluator: evaluator,
		workDir:   workDir,
	}
}

// Summon creates a Servitor with an auto-generated name and the given
// assignment (empty means it waits for the user's first message).
func (s *Spawner) Summon(ctx context.Context, assignment string) (*agentcore.Servitor, error) {
	name := s.names.NextNameOrFallback()
	return s.summonNamed(ctx, name, assignment, false)
}

// SummonNamed creates a Servitor with a caller-chosen name, reserving it
// before construction and releasing it if registry insertion fails.
func (s *Spawner) SummonNamed(ctx context.Context, name, assignment string) (*agentcore.Servitor, error) {
	if !s.names.Reserve(name) {
		return nil, &orcherr.NameAlreadyExistsError{Name: name}
	}
	return s.summonNamed(ctx, name, assignment, true)
}

// summonNamed does the actual construct-then-register dance once a name
// has been settled on. alreadyReserved tells it whether the name was
// reserved by the caller (SummonNamed, via Reserve) or by NextNameOrFallback
// itself (Summon) — either way, a failed registration must release it.
func (s *Spawner) summonNamed(ctx context.Context, name, assignment string, alreadyReserved bool) (*agentcore.Servitor, error) {
	id := agentcore.NewServitorID()
	sv := agentcore.NewServitor(ctx, id, name, assignment, s.workDir, s.messenger, s.bus, s.store, s.evaluator, false)

	if err := s.reg.Register(sv); err != nil {
		s.names.Release(name)
		return nil, err
	}

	if err := s.store.PutServitorMeta(ctx, id, name, assignment); err != nil {
		s.reg.Remove(id)
		s.names.Release(name)
		return nil, err
	}

	return sv, nil
}

// Register restores a previously-persisted servitor at project open:
// same reserve-then-register discipline as Summon, using the servitor's
// already-assigned name and id.
func (s *Spawner) Register(sv *agentcore.Servitor) error {
	if !s.names.Reserve(sv.Name()) {
		return &orcherr.NameAlreadyExistsError{Name: sv.Name()}
	}

	if err := s.reg.Register(sv); err != nil {
		s.names.Release(sv.Name())
		return err
	}
	return nil
}

// Dismiss removes the servitor with id from the registry, releases its
// name, and clears its persisted meta/session bindings. Dismissing an
// unknown id is an error.
func (s *Spawner) Dismiss(id string) error {
	agent, err := s.reg.Get(id)
	if err != nil {
		return err
	}

	if err := s.reg.Remove(id); err != nil {
		return err
	}
	s.names.Release(agent.Name())

	ctx := context.Background()
	_ = s.store.DeleteServitorMeta(ctx, id)
	_ = s.store.DeleteServitorSession(ctx, id)
	return nil
}
