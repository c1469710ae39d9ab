package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	acct, err := s.Create(ctx, "Alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", acct.Username)
	assert.NotEmpty(t, acct.PasswordHash)
	assert.NotEqual(t, "hunter2", acct.PasswordHash)

	got, err := s.Authenticate(ctx, "Alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username)

	// Lookup is case-insensitive; the stored casing is preserved.
	got, err = s.Authenticate(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Username)
}

func TestMemoryStoreRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, "alice", "hunter2")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMemoryStoreDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, "alice", "one")
	require.NoError(t, err)

	_, err = s.Create(ctx, "ALICE", "two")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestMemoryStoreExists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Create(ctx, "alice", "pw")
	require.NoError(t, err)

	ok, err = s.Exists(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreLocations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.LoadLocation(ctx, "alice")
	assert.ErrorIs(t, err, ErrNoLocation)

	require.NoError(t, s.SaveLocation(ctx, "Alice", "riverwalk_north"))

	roomID, err := s.LoadLocation(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "riverwalk_north", roomID)

	// Saving again replaces the previous value.
	require.NoError(t, s.SaveLocation(ctx, "alice", "pearl"))
	roomID, err = s.LoadLocation(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "pearl", roomID)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	assert.True(t, CheckPassword("secret", hash))
	assert.False(t, CheckPassword("Secret", hash))
	assert.False(t, CheckPassword("secret", "not-a-hash"))
}
