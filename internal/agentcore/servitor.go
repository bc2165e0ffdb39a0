package agentcore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/loupgaroublond/tavern/internal/commitment"
	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/storage"
)

// ServitorSystemPromptTemplate is filled in with the servitor's
// assignment (or a neutral placeholder when summoned without one) to
// produce its fixed system prompt.
const ServitorSystemPromptTemplate = `You are a servitor agent working within a larger project. ` +
	`Your assignment: %s. Use add_commitment to record verifiable promises ` +
	`before you finish. End your turn with DONE once every commitment ` +
	`passes, or WAITING if you need the user's input before continuing.`

// Servitor is a short-lived agent dispatched by the supervisor (or the
// user) to carry out one assignment. It additionally tracks an
// assignment, a commitment list, and a user-editable description.
type Servitor struct {
	*Base

	descMu      sync.Mutex
	assignment  string
	description string

	descStore *storage.SessionStore
}

// NewServitor constructs a Servitor with the given id and name, keyed in
// the SessionStore by its own agent uuid. assignment may be empty, in
// which case the servitor waits for its first user message instead of
// beginning work immediately.
func NewServitor(ctx context.Context, id, name, assignment, workDir string, messenger Messenger, bus *event.Bus, store *storage.SessionStore, eval commitment.Evaluator, loadSavedSession bool) *Servitor {
	binding := sessionBinding{
		get:    func(ctx context.Context) (string, error) { return store.GetServitorSession(ctx, id) },
		put:    func(ctx context.Context, sessionID string) error { return store.PutServitorSession(ctx, id, sessionID) },
		delete: func(ctx context.Context) error { return store.DeleteServitorSession(ctx, id) },
	}

	base := newBase(id, name, servitorSystemPrompt(assignment), workDir, messenger, bus, binding)
	base.commitments = &commitment.List{}
	base.evaluator = eval

	sv := &Servitor{Base: base, assignment: assignment, descStore: store}
	if loadSavedSession {
		base.loadSavedSession(ctx)
		if desc, err := store.GetDescription(ctx, id); err == nil {
			sv.description = desc
		}
	}
	return sv
}

func servitorSystemPrompt(assignment string) string {
	if assignment == "" {
		assignment = "none yet; wait for the user's first instruction"
	}
	return fmt.Sprintf(ServitorSystemPromptTemplate, assignment)
}

// NewServitorID generates a fresh agent uuid for a servitor about to be
// constructed.
func NewServitorID() string {
	return uuid.NewString()
}

// Assignment returns the task the supervisor (or user) gave this
// servitor at summon time.
func (s *Servitor) Assignment() string {
	return s.assignment
}

// Commitments returns the servitor's commitment list.
func (s *Servitor) Commitments() *commitment.List {
	return s.commitments
}

// AddCommitment records a new verifiable promise while the servitor is
// working.
func (s *Servitor) AddCommitment(description, assertion string) *commitment.Commitment {
	return s.commitments.Add(description, assertion)
}

// MarkWaiting forces the servitor into the Waiting state directly,
// bypassing completion-signal detection (used when the runtime's tool
// call signals a need for input rather than the text ruleset).
func (s *Servitor) MarkWaiting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Done {
		s.setState(Waiting)
	}
}

// MarkDone forces the servitor into the Done terminal state directly,
// skipping commitment verification (used when all commitments have
// already passed via an earlier verify_all that this confirms).
func (s *Servitor) MarkDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setState(Done)
}

// Description returns the user-editable description shown in the UI.
func (s *Servitor) Description() string {
	s.descMu.Lock()
	defer s.descMu.Unlock()
	return s.description
}

// SetDescription updates and persists the servitor's description.
func (s *Servitor) SetDescription(ctx context.Context, description string) error {
	s.descMu.Lock()
	s.description = description
	s.descMu.Unlock()
	return s.descStore.PutDescription(ctx, s.id, description)
}
