package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abg-ub/better-auth/pkg/session"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	sess := session.NewSession("tok-1", uuid.New(), time.Hour)
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	// Returned session is a copy; mutating it must not affect the store.
	got.UserID = uuid.New()
	again, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, again.UserID)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(0)
	ctx := context.Background()

	live := session.NewSession("tok-live", uuid.New(), time.Hour)
	dead := session.NewSession("tok-dead", uuid.New(), -time.Minute)
	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, dead))

	require.NoError(t, store.DeleteExpired(ctx))

	_, err := store.Get(ctx, "tok-live")
	require.NoError(t, err)
	_, err = store.Get(ctx, "tok-dead")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMemoryStore_Close(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(10 * time.Millisecond)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close()) // idempotent
}
