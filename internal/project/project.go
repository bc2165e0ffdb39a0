// Package project assembles the per-directory object graph described in
// the system overview: one Project per opened directory, owning its
// Supervisor, Registry, NameGenerator, Spawner, tool-server host, and
// SessionStore. Identity is the directory's canonical (symlink-resolved)
// path, replacing the teacher's git-commit-based project identity.
package project

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/loupgaroublond/tavern/internal/agentcore"
	"github.com/loupgaroublond/tavern/internal/commitment"
	"github.com/loupgaroublond/tavern/internal/config"
	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/messenger"
	"github.com/loupgaroublond/tavern/internal/namepool"
	"github.com/loupgaroublond/tavern/internal/registry"
	"github.com/loupgaroublond/tavern/internal/spawner"
	"github.com/loupgaroublond/tavern/internal/storage"
	"github.com/loupgaroublond/tavern/internal/toolserver"
	"github.com/loupgaroublond/tavern/internal/transcript"
)

// Project is the object graph rooted at one opened directory.
type Project struct {
	root string // canonical, symlink-resolved
	cfg  *config.Config

	bus      *event.Bus
	store    *storage.SessionStore
	names    *namepool.Generator
	registry *registry.Registry
	spawner  *spawner.Spawner
	msgr     agentcore.Messenger

	supervisor *agentcore.Supervisor
	toolHost   *toolserver.Host
	watcher    *transcript.Watcher

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// CanonicalPath resolves directory to the identity Project and
// ProjectManager key on: absolute, with symlinks resolved.
func CanonicalPath(directory string) (string, error) {
	abs, err := filepath.Abs(directory)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// A directory that does not exist yet (or a dangling symlink) still
		// gets a stable identity from its absolute form.
		return abs, nil
	}
	return resolved, nil
}

// Open builds a Project for directory: loads configuration, wires the
// registry/namepool/spawner/tool-server/supervisor, and restores any
// servitors persisted from a prior session.
func Open(parent context.Context, directory string) (*Project, error) {
	root, err := CanonicalPath(directory)
	if err != nil {
		return nil, fmt.Errorf("project: canonicalize %q: %w", directory, err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("project: load config: %w", err)
	}

	theme, err := config.LoadTheme(cfg.Theme)
	if err != nil {
		return nil, fmt.Errorf("project: load theme: %w", err)
	}

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return nil, fmt.Errorf("project: ensure paths: %w", err)
	}

	encoded := transcript.EncodeProjectPath(root)
	store := storage.NewSessionStore(filepath.Join(paths.StoragePath(), "projects", encoded))

	bus := event.NewBus()
	reg := registry.New(bus)
	names := namepool.New(theme)
	msgr := messenger.New(cfg.RuntimeBin, int64(cfg.ConcurrencyCap))
	evaluator := &commitment.ShellEvaluator{}

	ctx, cancel := context.WithCancel(parent)

	p := &Project{
		root:     root,
		cfg:      cfg,
		bus:      bus,
		store:    store,
		names:    names,
		registry: reg,
		msgr:     msgr,
		ctx:      ctx,
		cancel:   cancel,
	}

	sp := spawner.New(names, reg, bus, store, msgr, evaluator, root)
	p.spawner = sp

	host := toolserver.NewHost(sp)
	endpoint, err := host.Serve()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("project: start tool-server: %w", err)
	}
	p.toolHost = host

	p.supervisor = agentcore.NewSupervisor(ctx, root, root, msgr, bus, store,
		agentcore.ToolServerRef{Name: toolserver.Name, Endpoint: endpoint}, true)

	if err := p.restoreServitors(ctx, evaluator); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("project: restore servitors: %w", err)
	}

	if w, err := transcript.NewWatcher(filepath.Join(cfg.RuntimeRoot, "projects", encoded), bus); err == nil {
		w.Start()
		p.watcher = w
	}

	return p, nil
}

// restoreServitors reconstructs every servitor with a persisted
// name/assignment record, registering each one through the spawner's
// reserve-then-register discipline so a name collision on restore
// surfaces the same error a live SummonNamed call would.
func (p *Project) restoreServitors(ctx context.Context, evaluator commitment.Evaluator) error {
	ids, err := p.store.ListServitorIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		name, assignment, err := p.store.GetServitorMeta(ctx, id)
		if err != nil {
			continue // a session binding with no meta record predates this feature; skip it
		}

		sv := agentcore.NewServitor(ctx, id, name, assignment, p.root, p.msgr, p.bus, p.store, evaluator, true)
		if err := p.spawner.Register(sv); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the project's canonical directory path.
func (p *Project) Root() string { return p.root }

// Bus returns the project's event bus, for UI observation.
func (p *Project) Bus() *event.Bus { return p.bus }

// Registry returns the project's agent registry.
func (p *Project) Registry() *registry.Registry { return p.registry }

// Spawner returns the project's spawner.
func (p *Project) Spawner() *spawner.Spawner { return p.spawner }

// Supervisor returns the project's always-on supervisor agent.
func (p *Project) Supervisor() *agentcore.Supervisor { return p.supervisor }

// Store returns the project's durable session store.
func (p *Project) Store() *storage.SessionStore { return p.store }

// Config returns the project's merged configuration, loaded once at Open.
func (p *Project) Config() *config.Config { return p.cfg }

// TranscriptPath returns the on-disk path of agentID's current session
// transcript, for history rehydration (§4.8). agentID may be the literal
// string "supervisor" or a servitor's uuid.
func (p *Project) TranscriptPath(ctx context.Context, agentID string) (string, error) {
	var sessionID string
	var err error
	if agentID == p.supervisor.ID() {
		sessionID, err = p.store.GetSupervisorSession(ctx, p.root)
	} else {
		sessionID, err = p.store.GetServitorSession(ctx, agentID)
	}
	if err != nil {
		return "", err
	}

	encoded := transcript.EncodeProjectPath(p.root)
	return transcript.SessionPath(p.cfg.RuntimeRoot, encoded, sessionID), nil
}

// Context returns the project's lifetime context, cancelled by Close. A
// send made with this context (or one derived from it) gets its ctx.Err()
// when the project closes; a send made with any other context is not
// affected by Close.
func (p *Project) Context() context.Context { return p.ctx }

// Close tears the project down: cancels the project's context (aborting
// any send made with Context(), via the messenger's exec.CommandContext), stops
// the transcript watcher, closes the tool-server listener, releases
// every reserved name, and clears the registry. Grounded on the
// teacher's Service.Abort pattern, generalized to "abort everything in
// flight" instead of one named session.
func (p *Project) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()

	if p.watcher != nil {
		_ = p.watcher.Stop()
	}

	var toolErr error
	if p.toolHost != nil {
		toolErr = p.toolHost.Close()
	}

	for _, a := range p.registry.All() {
		p.names.Release(a.Name())
	}
	p.registry.Clear()

	if err := p.bus.Close(); err != nil {
		return err
	}
	return toolErr
}
