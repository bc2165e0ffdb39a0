package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_SupervisorBinding(t *testing.T) {
	store := NewSessionStore(t.TempDir())
	ctx := context.Background()

	_, err := store.GetSupervisorSession(ctx, "home-project")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.PutSupervisorSession(ctx, "home-project", "S-1"))

	got, err := store.GetSupervisorSession(ctx, "home-project")
	require.NoError(t, err)
	assert.Equal(t, "S-1", got)

	require.NoError(t, store.DeleteSupervisorSession(ctx, "home-project"))
	_, err = store.GetSupervisorSession(ctx, "home-project")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_ServitorBinding(t *testing.T) {
	store := NewSessionStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.PutServitorSession(ctx, "uuid-1", "S-2"))

	got, err := store.GetServitorSession(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "S-2", got)

	ids, err := store.ListServitorIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "uuid-1")
}

func TestSessionStore_ServitorMeta(t *testing.T) {
	store := NewSessionStore(t.TempDir())
	ctx := context.Background()

	_, _, err := store.GetServitorMeta(ctx, "uuid-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.PutServitorMeta(ctx, "uuid-1", "Alchemist", "write tests"))

	name, assignment, err := store.GetServitorMeta(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "Alchemist", name)
	assert.Equal(t, "write tests", assignment)

	require.NoError(t, store.DeleteServitorMeta(ctx, "uuid-1"))
	_, _, err = store.GetServitorMeta(ctx, "uuid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_Description(t *testing.T) {
	store := NewSessionStore(t.TempDir())
	ctx := context.Background()

	_, err := store.GetDescription(ctx, "uuid-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.PutDescription(ctx, "uuid-1", "fix the bug"))

	got, err := store.GetDescription(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "fix the bug", got)
}
