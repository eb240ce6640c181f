package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := New("token", "7", "alice", []string{"CLIENT"})
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "token", s.Token)
	assert.Equal(t, "7", s.UserID)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, []string{"CLIENT"}, s.Roles)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New("token", "7", "alice", []string{"CLIENT"})
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an unknown session is not an error: teardown is idempotent.
	assert.NoError(t, store.Delete(context.Background(), "missing"))
}
