package agentcore

import "context"

// ToolServerRef advertises a tool-server the runtime subprocess should
// attach to a query, by name and connection endpoint. Only the
// Supervisor's QuerySpec ever sets this (see internal/toolserver).
type ToolServerRef struct {
	Name     string
	Endpoint string
}

// QuerySpec describes everything the messenger needs to build a single
// runtime invocation: the agent's fixed system prompt, its working
// directory, an optional session id to resume, and any tool-servers the
// runtime should attach for this turn.
type QuerySpec struct {
	SystemPrompt    string
	WorkDir         string
	ResumeSessionID string
	ToolServers     []ToolServerRef
}

// StreamEventKind tags the variant carried by a StreamEvent, mirroring
// the causal order guaranteed by send_streaming: any number of
// text-delta/tool-use-started/tool-use-finished events, then exactly one
// of completed or error.
type StreamEventKind string

const (
	StreamTextDelta       StreamEventKind = "text-delta"
	StreamToolUseStarted  StreamEventKind = "tool-use-started"
	StreamToolUseFinished StreamEventKind = "tool-use-finished"
	StreamCompleted       StreamEventKind = "completed"
	StreamError           StreamEventKind = "error"
)

// StreamEvent is one event in a send_streaming sequence.
type StreamEvent struct {
	Kind StreamEventKind

	Text     string // StreamTextDelta
	ToolName string // StreamToolUseStarted, StreamToolUseFinished
	ToolOK   bool   // StreamToolUseFinished

	SessionID string // StreamCompleted
	FullText  string // StreamCompleted

	Err error // StreamError
}

// CancelFunc aborts an in-flight send_streaming call. Calling it more
// than once, or after the stream has already completed, is a no-op.
type CancelFunc func()

// Messenger is the subprocess transport contract agents invoke. A live
// implementation shells out to the runtime CLI (internal/messenger); a
// mock implementation replays canned responses for tests. Agents are
// oblivious to which is in use.
type Messenger interface {
	// Send performs one synchronous turn and returns the assistant's
	// aggregated result text and the session id the runtime assigned
	// (or reused, on resume).
	Send(ctx context.Context, spec QuerySpec, prompt string) (responseText string, sessionID string, err error)

	// SendStreaming performs one turn, yielding incremental events on
	// the returned channel until it is closed. The returned cancel
	// func aborts the underlying request.
	SendStreaming(ctx context.Context, spec QuerySpec, prompt string) (<-chan StreamEvent, CancelFunc, error)
}
