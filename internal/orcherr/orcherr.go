// Package orcherr defines the error taxonomy shared across the
// orchestration core. Each variant carries the minimum context a caller
// needs to act (see spec §7): a session-corrupt error carries the stale
// session id, a name collision carries the name, and so on.
package orcherr

import "fmt"

// SessionCorruptError signals that a resume attempt failed against the
// external runtime. The UI should offer to start a fresh session.
type SessionCorruptError struct {
	SessionID string
	Cause     error
}

func (e *SessionCorruptError) Error() string {
	return fmt.Sprintf("session %s is corrupt or expired: %v", e.SessionID, e.Cause)
}

func (e *SessionCorruptError) Unwrap() error { return e.Cause }

// NameAlreadyExistsError signals a registry name collision.
type NameAlreadyExistsError struct {
	Name string
}

func (e *NameAlreadyExistsError) Error() string {
	return fmt.Sprintf("name already exists: %s", e.Name)
}

// AgentNotFoundError signals a lookup or dismissal miss. Suggestion is
// advisory only (see SPEC_FULL §3.7) and may be empty.
type AgentNotFoundError struct {
	ID         string
	Name       string
	Suggestion string
}

func (e *AgentNotFoundError) Error() string {
	if e.Suggestion != "" {
		if e.Name != "" {
			return fmt.Sprintf("agent not found: %q (did you mean %q?)", e.Name, e.Suggestion)
		}
		return fmt.Sprintf("agent not found: %s (did you mean %q?)", e.ID, e.Suggestion)
	}
	if e.Name != "" {
		return fmt.Sprintf("agent not found: %q", e.Name)
	}
	return fmt.Sprintf("agent not found: %s", e.ID)
}

// TransportFailureError wraps an underlying runtime-call failure that
// carries no stale-session implication.
type TransportFailureError struct {
	Cause error
}

func (e *TransportFailureError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

func (e *TransportFailureError) Unwrap() error { return e.Cause }

// VerificationError signals that a commitment's assertion check itself
// errored (distinct from a clean fail).
type VerificationError struct {
	Commitment string
	Cause      error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification error for %q: %v", e.Commitment, e.Cause)
}

func (e *VerificationError) Unwrap() error { return e.Cause }

// ParseError signals a transcript line that could not be decoded. The
// transcript reader skips such lines without constructing or logging
// this error, so it is never surfaced above the reader.
type ParseError struct {
	Line  int
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v", e.Line, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }
