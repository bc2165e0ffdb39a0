package messenger

import (
	"context"
	"fmt"
	"sync"

	"github.com/loupgaroublond/tavern/internal/agentcore"
)

// QueuedResponse is one canned reply a Mock messenger will return,
// plus an optional error to return instead.
type QueuedResponse struct {
	Text string
	Err  error
}

// Mock is a deterministic Messenger for tests: canned responses queued
// per call, every prompt recorded for later assertion, and streaming
// simulated by splitting the canned response into fixed-size chunks.
type Mock struct {
	mu        sync.Mutex
	queue     []QueuedResponse
	prompts   []string
	specs     []agentcore.QuerySpec
	chunkSize int
	sessionN  int
}

// NewMock builds an empty Mock. ChunkSize defaults to 8 runes per
// text-delta event when streaming; set it directly to override.
func NewMock() *Mock {
	return &Mock{chunkSize: 8}
}

// Queue appends a canned response to be returned by the next Send or
// SendStreaming call.
func (m *Mock) Queue(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, QueuedResponse{Text: text})
}

// QueueError appends a canned failure to be returned by the next call.
func (m *Mock) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, QueuedResponse{Err: err})
}

// SetChunkSize overrides the streaming chunk size (in runes).
func (m *Mock) SetChunkSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunkSize = n
}

// Prompts returns every prompt passed to Send/SendStreaming so far.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Specs returns every QuerySpec passed to Send/SendStreaming so far.
func (m *Mock) Specs() []agentcore.QuerySpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]agentcore.QuerySpec, len(m.specs))
	copy(out, m.specs)
	return out
}

func (m *Mock) next(spec agentcore.QuerySpec, prompt string) (QueuedResponse, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	m.specs = append(m.specs, spec)

	var resp QueuedResponse
	if len(m.queue) > 0 {
		resp = m.queue[0]
		m.queue = m.queue[1:]
	}

	sessionID := spec.ResumeSessionID
	if sessionID == "" {
		m.sessionN++
		sessionID = fmt.Sprintf("mock-session-%d", m.sessionN)
	}
	return resp, sessionID
}

// Send returns the next queued response, or an empty success if none is
// queued.
func (m *Mock) Send(ctx context.Context, spec agentcore.QuerySpec, prompt string) (string, string, error) {
	resp, sessionID := m.next(spec, prompt)
	if resp.Err != nil {
		return "", "", resp.Err
	}
	return resp.Text, sessionID, nil
}

// SendStreaming simulates streaming by splitting the next queued
// response into fixed-size rune chunks, then a completed event (or a
// single error event, if the queued response is an error).
func (m *Mock) SendStreaming(ctx context.Context, spec agentcore.QuerySpec, prompt string) (<-chan agentcore.StreamEvent, agentcore.CancelFunc, error) {
	resp, sessionID := m.next(spec, prompt)

	out := make(chan agentcore.StreamEvent)
	cancelled := make(chan struct{})
	var once sync.Once
	cancel := agentcore.CancelFunc(func() { once.Do(func() { close(cancelled) }) })

	go func() {
		defer close(out)

		if resp.Err != nil {
			select {
			case out <- agentcore.StreamEvent{Kind: agentcore.StreamError, Err: resp.Err}:
			case <-cancelled:
			}
			return
		}

		runes := []rune(resp.Text)
		m.mu.Lock()
		chunkSize := m.chunkSize
		m.mu.Unlock()
		if chunkSize <= 0 {
			chunkSize = len(runes)
			if chunkSize == 0 {
				chunkSize = 1
			}
		}

		for i := 0; i < len(runes); i += chunkSize {
			end := i + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			select {
			case out <- agentcore.StreamEvent{Kind: agentcore.StreamTextDelta, Text: string(runes[i:end])}:
			case <-cancelled:
				return
			}
		}

		select {
		case out <- agentcore.StreamEvent{Kind: agentcore.StreamCompleted, SessionID: sessionID, FullText: resp.Text}:
		case <-cancelled:
		}
	}()

	return out, cancel, nil
}
