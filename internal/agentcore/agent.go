package agentcore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/loupgaroublond/tavern/internal/commitment"
	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/orcherr"
)

// DefaultVerifyTimeout bounds how long commitment verification may run
// before a completion signal is abandoned back to idle.
const DefaultVerifyTimeout = 30 * time.Second

// sessionBinding abstracts the SessionStore key scheme difference
// between supervisors (keyed by project path) and servitors (keyed by
// agent uuid), so Base can persist and clear sessions without knowing
// which role it belongs to.
type sessionBinding struct {
	get    func(ctx context.Context) (string, error)
	put    func(ctx context.Context, sessionID string) error
	delete func(ctx context.Context) error
}

// Base implements the state machine and send/send_streaming/
// reset_conversation contracts shared by Supervisor and Servitor. It is
// embedded, never used standalone.
type Base struct {
	mu sync.Mutex

	id   string
	name string

	state     State
	sessionID string

	systemPrompt string
	workDir      string

	messenger Messenger
	binding   sessionBinding
	bus       *event.Bus

	// commitments is nil for a Supervisor (no commitments) and a
	// *commitment.List for a Servitor.
	commitments   *commitment.List
	evaluator     commitment.Evaluator
	verifyTimeout time.Duration

	// toolServers is advertised only by the Supervisor's query spec.
	toolServers []ToolServerRef
}

func newBase(id, name, systemPrompt, workDir string, messenger Messenger, bus *event.Bus, binding sessionBinding) *Base {
	return &Base{
		id:            id,
		name:          name,
		state:         Idle,
		systemPrompt:  systemPrompt,
		workDir:       workDir,
		messenger:     messenger,
		binding:       binding,
		bus:           bus,
		verifyTimeout: DefaultVerifyTimeout,
	}
}

// ID returns the agent's stable identifier. Satisfies registry.Agent.
func (b *Base) ID() string { return b.id }

// Name returns the agent's display name. Satisfies registry.Agent.
func (b *Base) Name() string { return b.name }

// State returns the agent's current lifecycle value.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// loadSavedSession looks up a previously-persisted session id for this
// agent's binding, for use as the resume id on the first send after
// project open. Absence of a stored id is not an error.
func (b *Base) loadSavedSession(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id, err := b.binding.get(ctx); err == nil {
		b.sessionID = id
	}
}

func (b *Base) setState(to State) {
	from := b.state
	b.state = to
	if b.bus != nil && from != to {
		b.bus.Publish(event.Event{Type: event.AgentStateChanged, Data: event.AgentStateChangedData{
			ID: b.id, Name: b.name, From: string(from), To: string(to),
		}})
	}
}

// Send implements the send(text) contract (spec §4.1).
func (b *Base) Send(ctx context.Context, text string) (string, error) {
	b.mu.Lock()
	if b.state != Idle && b.state != Waiting {
		rejected := b.state
		b.mu.Unlock()
		return "", fmt.Errorf("agent %s: send rejected, already %s", b.id, rejected)
	}

	prior := b.state
	prevSessionID := b.sessionID
	resuming := prevSessionID != ""
	b.setState(Working)
	spec := QuerySpec{
		SystemPrompt:    b.systemPrompt,
		WorkDir:         b.workDir,
		ResumeSessionID: prevSessionID,
		ToolServers:     b.toolServers,
	}
	messenger := b.messenger
	b.mu.Unlock()

	responseText, sessionID, err := messenger.Send(ctx, spec, text)
	if err != nil {
		b.mu.Lock()
		b.setState(prior)
		b.mu.Unlock()

		if resuming {
			return "", &orcherr.SessionCorruptError{SessionID: prevSessionID, Cause: err}
		}
		return "", err
	}

	if err := b.binding.put(ctx, sessionID); err != nil {
		// The call itself succeeded; a persistence failure must not
		// lose the assistant's response.
		_ = err
	}

	b.mu.Lock()
	b.sessionID = sessionID
	b.mu.Unlock()

	b.applySignal(ctx, responseText)

	return responseText, nil
}

// applySignal runs completion-signal detection and, for agents carrying
// commitments, verification, then transitions to the resulting state. A
// signal that triggers verification first moves the agent to Verifying
// so observers see the intermediate state; verification itself runs
// without holding b.mu, since it may take as long as verifyTimeout.
func (b *Base) applySignal(ctx context.Context, responseText string) {
	switch DetectSignal(responseText) {
	case SignalComplete:
		b.mu.Lock()
		hasCommitments := b.commitments != nil && b.commitments.Len() > 0
		if !hasCommitments {
			b.setState(Done)
			b.mu.Unlock()
			return
		}
		b.setState(Verifying)
		commitments, eval, timeout := b.commitments, b.evaluator, b.verifyTimeout
		b.mu.Unlock()

		passed := commitment.VerifyAll(ctx, commitments, eval, timeout)

		b.mu.Lock()
		if passed {
			b.setState(Done)
		} else {
			b.setState(Idle)
		}
		b.mu.Unlock()
	case SignalWaiting:
		b.mu.Lock()
		b.setState(Waiting)
		b.mu.Unlock()
	default:
		b.mu.Lock()
		b.setState(Idle)
		b.mu.Unlock()
	}
}

// SendStreaming implements the send_streaming(text) contract (spec
// §4.1): same lifecycle effects as Send, but yields incremental events
// and supports cancellation.
func (b *Base) SendStreaming(ctx context.Context, text string) (<-chan StreamEvent, CancelFunc, error) {
	b.mu.Lock()
	if b.state != Idle && b.state != Waiting {
		rejected := b.state
		b.mu.Unlock()
		return nil, nil, fmt.Errorf("agent %s: send_streaming rejected, already %s", b.id, rejected)
	}

	prior := b.state
	prevSessionID := b.sessionID
	resuming := prevSessionID != ""
	b.setState(Working)
	spec := QuerySpec{
		SystemPrompt:    b.systemPrompt,
		WorkDir:         b.workDir,
		ResumeSessionID: prevSessionID,
		ToolServers:     b.toolServers,
	}
	messenger := b.messenger
	b.mu.Unlock()

	upstream, upstreamCancel, err := messenger.SendStreaming(ctx, spec, text)
	if err != nil {
		b.mu.Lock()
		b.setState(prior)
		b.mu.Unlock()
		if resuming {
			return nil, nil, &orcherr.SessionCorruptError{SessionID: prevSessionID, Cause: err}
		}
		return nil, nil, err
	}

	out := make(chan StreamEvent)
	cancelled := make(chan struct{})
	var cancelOnce sync.Once
	cancel := CancelFunc(func() {
		cancelOnce.Do(func() {
			close(cancelled)
			if upstreamCancel != nil {
				upstreamCancel()
			}
		})
	})

	go func() {
		defer close(out)
		var full string
		for ev := range upstream {
			select {
			case <-cancelled:
				b.mu.Lock()
				b.setState(Idle)
				b.mu.Unlock()
				return
			default:
			}

			if ev.Kind == StreamTextDelta {
				full += ev.Text
			}
			if ev.Kind == StreamCompleted {
				ev.FullText = full
				if err := b.binding.put(ctx, ev.SessionID); err != nil {
					_ = err
				}
				b.mu.Lock()
				b.sessionID = ev.SessionID
				b.mu.Unlock()
				b.applySignal(ctx, full)
			}
			if ev.Kind == StreamError {
				b.mu.Lock()
				b.setState(prior)
				b.mu.Unlock()
				if resuming {
					ev.Err = &orcherr.SessionCorruptError{SessionID: prevSessionID, Cause: ev.Err}
				}
			}

			select {
			case out <- ev:
			case <-cancelled:
				b.mu.Lock()
				b.setState(Idle)
				b.mu.Unlock()
				return
			}
		}

		// A cancelled upstream may close without delivering any event;
		// the agent still leaves Working.
		select {
		case <-cancelled:
			b.mu.Lock()
			if b.state == Working {
				b.setState(Idle)
			}
			b.mu.Unlock()
		default:
		}
	}()

	return out, cancel, nil
}

// ResetConversation implements reset_conversation() (spec §4.1): clears
// the in-memory session id and the persisted binding. It never revives a
// Done agent, and otherwise sets Idle only when the agent was in a
// non-working, non-done state.
func (b *Base) ResetConversation(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessionID = ""
	if err := b.binding.delete(ctx); err != nil {
		return err
	}

	if b.state != Working && b.state != Done {
		b.setState(Idle)
	}
	return nil
}
