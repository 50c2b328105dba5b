package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ReusesStorePerSession(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, client, nil)

	first, err := m.Store(ctx, "session-1")
	require.NoError(t, err)
	again, err := m.Store(ctx, "session-1")
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := m.Store(ctx, "session-2")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestManager_StoreComesHydrated(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mr.Set(slotKey("session-1"), `[{"id":"a","productId":"WP-001","name":"First","price":100}]`)

	m := NewManager(ctx, client, nil)
	store, err := m.Store(ctx, "session-1")
	require.NoError(t, err)

	assert.True(t, store.Loaded())
	assert.Equal(t, 1, store.ItemCount())
}

func TestManager_FailedHydrationIsRetried(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, client, nil)

	mr.Close()
	_, err := m.Store(ctx, "session-1")
	require.Error(t, err)

	mr.Restart()
	store, err := m.Store(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, store.Loaded())
}
