package agentcore

import (
	"context"

	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/storage"
)

// SupervisorSystemPrompt is the fixed system prompt every supervisor is
// constructed with. It instructs the runtime to emit the completion
// tokens DetectSignal looks for and to use the tavern tool-server to
// manage servitors.
const SupervisorSystemPrompt = `You are the supervisor agent for this project. ` +
	`You may summon and dismiss servitor agents via the tavern tool-server ` +
	`to delegate work. When you have nothing further to do, end your turn ` +
	`with DONE. When you need the user's input before continuing, end your ` +
	`turn with WAITING.`

// Supervisor is the one-per-project daemon agent: always-on, advertises
// the tavern tool-server, and has no commitments of its own. Its done
// transition is unreachable in practice.
type Supervisor struct {
	*Base
}

// NewSupervisor constructs a Supervisor for a project, keyed in the
// SessionStore by the project's canonical path. toolServer is the single
// tavern tool-server entry the live runtime attaches to every query.
func NewSupervisor(ctx context.Context, projectPathCanonical, workDir string, messenger Messenger, bus *event.Bus, store *storage.SessionStore, toolServer ToolServerRef, loadSavedSession bool) *Supervisor {
	binding := sessionBinding{
		get:    func(ctx context.Context) (string, error) { return store.GetSupervisorSession(ctx, projectPathCanonical) },
		put:    func(ctx context.Context, sessionID string) error { return store.PutSupervisorSession(ctx, projectPathCanonical, sessionID) },
		delete: func(ctx context.Context) error { return store.DeleteSupervisorSession(ctx, projectPathCanonical) },
	}

	base := newBase("supervisor", "Supervisor", SupervisorSystemPrompt, workDir, messenger, bus, binding)
	base.toolServers = []ToolServerRef{toolServer}

	s := &Supervisor{Base: base}
	if loadSavedSession {
		base.loadSavedSession(ctx)
	}
	return s
}
