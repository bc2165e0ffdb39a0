package storage

import "context"

// SessionStore is the durable key-value space described in the runtime
// contract: supervisor/servitor session-id bindings and agent
// descriptions, all backed by the same atomic file-based Storage.
//
// Keys (storage paths, each a single leaf value):
//
//	session.supervisor.<encoded-project-path> -> session id string
//	session.servitor.<agent-uuid>              -> session id string
//	agent.<agent-uuid>.description              -> string
type SessionStore struct {
	backend *Storage
}

// NewSessionStore wraps a Storage rooted at dir as a SessionStore.
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{backend: New(dir)}
}

type sessionRecord struct {
	SessionID string `json:"sessionId"`
}

type descriptionRecord struct {
	Description string `json:"description"`
}

type servitorMetaRecord struct {
	Name       string `json:"name"`
	Assignment string `json:"assignment"`
}

// GetSupervisorSession returns the stored session id for a project,
// keyed by its canonical path. ErrNotFound if none is bound.
func (s *SessionStore) GetSupervisorSession(ctx context.Context, encodedProjectPath string) (string, error) {
	var rec sessionRecord
	if err := s.backend.Get(ctx, []string{"session", "supervisor", encodedProjectPath}, &rec); err != nil {
		return "", err
	}
	return rec.SessionID, nil
}

// PutSupervisorSession persists the session id the runtime assigned for a
// project's supervisor.
func (s *SessionStore) PutSupervisorSession(ctx context.Context, encodedProjectPath, sessionID string) error {
	return s.backend.Put(ctx, []string{"session", "supervisor", encodedProjectPath}, sessionRecord{SessionID: sessionID})
}

// DeleteSupervisorSession clears a supervisor's session binding (used by
// reset_conversation).
func (s *SessionStore) DeleteSupervisorSession(ctx context.Context, encodedProjectPath string) error {
	return s.backend.Delete(ctx, []string{"session", "supervisor", encodedProjectPath})
}

// GetServitorSession returns the stored session id for a servitor, keyed
// by its agent UUID. ErrNotFound if none is bound.
func (s *SessionStore) GetServitorSession(ctx context.Context, agentID string) (string, error) {
	var rec sessionRecord
	if err := s.backend.Get(ctx, []string{"session", "servitor", agentID}, &rec); err != nil {
		return "", err
	}
	return rec.SessionID, nil
}

// PutServitorSession persists the session id the runtime assigned for a
// servitor.
func (s *SessionStore) PutServitorSession(ctx context.Context, agentID, sessionID string) error {
	return s.backend.Put(ctx, []string{"session", "servitor", agentID}, sessionRecord{SessionID: sessionID})
}

// DeleteServitorSession clears a servitor's session binding.
func (s *SessionStore) DeleteServitorSession(ctx context.Context, agentID string) error {
	return s.backend.Delete(ctx, []string{"session", "servitor", agentID})
}

// GetDescription returns the user-edited description for an agent, or
// ErrNotFound if it was never set.
func (s *SessionStore) GetDescription(ctx context.Context, agentID string) (string, error) {
	var rec descriptionRecord
	if err := s.backend.Get(ctx, []string{"agent", agentID, "description"}, &rec); err != nil {
		return "", err
	}
	return rec.Description, nil
}

// PutDescription persists a user-edited agent description.
func (s *SessionStore) PutDescription(ctx context.Context, agentID, description string) error {
	return s.backend.Put(ctx, []string{"agent", agentID, "description"}, descriptionRecord{Description: description})
}

// ListServitorIDs returns the agent UUIDs with a durable session or
// name/assignment meta record, used to restore previously-spawned
// servitors on project open.
func (s *SessionStore) ListServitorIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	ids := []string{}
	for _, prefix := range [][]string{{"session", "servitor"}, {"servitor"}} {
		items, err := s.backend.List(ctx, prefix)
		if err != nil {
			return nil, err
		}
		for _, id := range items {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// PutServitorMeta persists the name and assignment a servitor was
// summoned with, so project open can reconstruct it via
// spawner.Register instead of losing it to a bare session id.
func (s *SessionStore) PutServitorMeta(ctx context.Context, agentID, name, assignment string) error {
	return s.backend.Put(ctx, []string{"servitor", agentID, "meta"}, servitorMetaRecord{Name: name, Assignment: assignment})
}

// GetServitorMeta returns the persisted name and assignment for a
// servitor, or ErrNotFound if none was recorded.
func (s *SessionStore) GetServitorMeta(ctx context.Context, agentID string) (name, assignment string, err error) {
	var rec servitorMetaRecord
	if err := s.backend.Get(ctx, []string{"servitor", agentID, "meta"}, &rec); err != nil {
		return "", "", err
	}
	return rec.Name, rec.Assignment, nil
}

// DeleteServitorMeta removes a servitor's persisted name/assignment
// record on dismissal.
func (s *SessionStore) DeleteServitorMeta(ctx context.Context, agentID string) error {
	return s.backend.Delete(ctx, []string{"servitor", agentID, "meta"})
}
