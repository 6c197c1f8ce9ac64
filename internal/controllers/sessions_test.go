package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionLifecycle(t *testing.T) {
	store := NewSessionStore(nil, time.Hour)
	ctx := context.Background()

	token, expiresAt, err := store.Create(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(token)
	assert.NoError(t, err, "memory-backed tokens are UUIDs")
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	assert.True(t, store.Valid(ctx, token))

	require.NoError(t, store.Delete(ctx, token))
	assert.False(t, store.Valid(ctx, token))
}

func TestMemorySessionsExpire(t *testing.T) {
	store := NewSessionStore(nil, time.Hour)
	ctx := context.Background()

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, _, err := store.Create(ctx)
	require.NoError(t, err)
	assert.True(t, store.Valid(ctx, token))

	now = now.Add(61 * time.Minute)
	assert.False(t, store.Valid(ctx, token), "sessions end when their lifetime elapses")
}

func TestMalformedTokensAreRejected(t *testing.T) {
	store := NewSessionStore(nil, time.Hour)
	ctx := context.Background()

	assert.False(t, store.Valid(ctx, "not-a-uuid"))
	assert.False(t, store.Valid(ctx, ""))

	// Deleting garbage is a quiet no-op.
	assert.NoError(t, store.Delete(ctx, "not-a-uuid"))
}

func TestUnknownTokensAreNotValid(t *testing.T) {
	store := NewSessionStore(nil, time.Hour)
	ctx := context.Background()

	assert.False(t, store.Valid(ctx, uuid.NewString()))
}
