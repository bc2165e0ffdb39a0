package agentcore

import (
	"context"
	"errors"
	"sync"
)

// mockMessenger is a minimal deterministic Messenger for agentcore's own
// tests; the fuller mock used by the rest of the tree lives in
// internal/messenger.
type mockMessenger struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
	sessionN  int
}

func (m *mockMessenger) queue(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
}

func (m *mockMessenger) failNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockMessenger) Send(ctx context.Context, spec QuerySpec, prompt string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if m.err != nil {
		err := m.err
		m.err = nil
		return "", "", err
	}

	if len(m.responses) == 0 {
		return "", "", errors.New("mockMessenger: no queued response")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]

	m.sessionN++
	sessionID := spec.ResumeSessionID
	if sessionID == "" {
		sessionID = "session-1"
	}
	return resp, sessionID, nil
}

func (m *mockMessenger) SendStreaming(ctx context.Context, spec QuerySpec, prompt string) (<-chan StreamEvent, CancelFunc, error) {
	m.mu.Lock()
	if m.err != nil {
		err := m.err
		m.err = nil
		m.mu.Unlock()
		return nil, nil, err
	}
	var resp string
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	out := make(chan StreamEvent, 4)
	cancelled := make(chan struct{})
	var once sync.Once
	cancel := CancelFunc(func() { once.Do(func() { close(cancelled) }) })

	go func() {
		defer close(out)
		select {
		case out <- StreamEvent{Kind: StreamTextDelta, Text: resp}:
		case <-cancelled:
			return
		}
		sessionID := spec.ResumeSessionID
		if sessionID == "" {
			sessionID = "session-1"
		}
		select {
		case out <- StreamEvent{Kind: StreamCompleted, SessionID: sessionID}:
		case <-cancelled:
		}
	}()

	return out, cancel, nil
}
