package cart

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Manager hands out one live Store per session. A store is constructed and
// hydrated on first use, then kept for the lifetime of the process with a
// watcher goroutine applying changes written by other instances.
type Manager struct {
	mu       sync.Mutex
	client   *redis.Client
	notices  Notices
	stores   map[string]*Store
	watchCtx context.Context
}

// NewManager uses ctx as the lifetime of all watcher goroutines.
func NewManager(ctx context.Context, client *redis.Client, notices Notices) *Manager {
	return &Manager{
		client:   client,
		notices:  notices,
		stores:   make(map[string]*Store),
		watchCtx: ctx,
	}
}

// Store returns the hydrated store for a session, constructing it on first
// use. A failed hydration is not cached, so the next request retries.
func (m *Manager) Store(ctx context.Context, session string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[session]; ok {
		return store, nil
	}

	slot := NewRedisSlot(m.client, session)
	store := NewStore(slot, m.notices)
	if err := store.Hydrate(ctx); err != nil {
		return nil, err
	}

	go slot.Watch(m.watchCtx, store.Replace)
	m.stores[session] = store
	return store, nil
}
