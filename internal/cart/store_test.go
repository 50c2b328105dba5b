package cart

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	m       sync.Mutex
	items   []LineItem
	saved   []LineItem
	saves   int
	loadErr error
	saveErr error
}

func (m *mockStorage) Load(context.Context) ([]LineItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.items, nil
}

func (m *mockStorage) Save(_ context.Context, items []LineItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append([]LineItem(nil), items...)
	return nil
}

func (m *mockStorage) Clear(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saved = nil
	return nil
}

func (m *mockStorage) saveCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.saves
}

func (m *mockStorage) lastSaved() []LineItem {
	m.m.Lock()
	defer m.m.Unlock()
	return m.saved
}

type mockNotices struct {
	m        sync.Mutex
	messages []string
}

func (m *mockNotices) Notify(message string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.messages = append(m.messages, message)
}

func (m *mockNotices) count() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.messages)
}

func validCandidate() LineItem {
	return LineItem{
		ProductID:         "WP-001",
		ProductDatabaseID: 42,
		Name:              "Forest Mural",
		Price:             426.0,
		Width:             90,
		Height:            100,
		Material:          "Vinyl",
	}
}

func hydratedStore(t *testing.T) (*Store, *mockStorage) {
	t.Helper()
	storage := &mockStorage{}
	store := NewStore(storage, nil)
	require.NoError(t, store.Hydrate(context.Background()))
	return store, storage
}

func TestAddItem_Valid(t *testing.T) {
	store, storage := hydratedStore(t)

	item, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 1, store.ItemCount())
	assert.InDelta(t, 426.0, store.TotalPrice(), 1e-9)
	assert.Len(t, storage.lastSaved(), 1)
}

func TestAddItem_AssignsUniqueIDs(t *testing.T) {
	store, _ := hydratedStore(t)

	first, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)
	second, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, store.ItemCount())
}

func TestAddItem_InvalidDimensions(t *testing.T) {
	cases := map[string]func(*LineItem){
		"width zero":      func(it *LineItem) { it.Width = 0 },
		"width too large": func(it *LineItem) { it.Width = 1000 },
		"height zero":     func(it *LineItem) { it.Height = 0 },
		"height too large": func(it *LineItem) {
			it.Height = 1000
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store, storage := hydratedStore(t)
			candidate := validCandidate()
			mutate(&candidate)

			_, err := store.AddItem(context.Background(), candidate)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
			assert.Equal(t, 0, store.ItemCount())
			assert.Zero(t, store.TotalPrice())
			assert.Equal(t, 0, storage.saveCount())
		})
	}
}

func TestAddItem_InvalidPrice(t *testing.T) {
	cases := map[string]float64{
		"zero":     0,
		"negative": -10,
		"NaN":      math.NaN(),
		"+Inf":     math.Inf(1),
	}

	for name, price := range cases {
		t.Run(name, func(t *testing.T) {
			store, storage := hydratedStore(t)
			candidate := validCandidate()
			candidate.Price = price

			_, err := store.AddItem(context.Background(), candidate)
			assert.ErrorIs(t, err, ErrInvalidPrice)
			assert.Equal(t, 0, store.ItemCount())
			assert.Equal(t, 0, storage.saveCount())
		})
	}
}

func TestRemoveItem_Idempotent(t *testing.T) {
	store, _ := hydratedStore(t)

	item, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)

	store.RemoveItem(context.Background(), item.ID)
	assert.Equal(t, 0, store.ItemCount())

	// Second removal of the same id changes nothing.
	store.RemoveItem(context.Background(), item.ID)
	assert.Equal(t, 0, store.ItemCount())
	assert.Zero(t, store.TotalPrice())
}

func TestClear(t *testing.T) {
	store, storage := hydratedStore(t)

	_, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)
	_, err = store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)

	store.Clear(context.Background())

	assert.Equal(t, 0, store.ItemCount())
	assert.Zero(t, store.TotalPrice())
	assert.Empty(t, storage.lastSaved())
}

func TestHydrate_LoadsPersistedItems(t *testing.T) {
	persisted := []LineItem{
		{ID: "a", ProductID: "WP-001", Name: "First", Price: 100, Width: 50, Height: 50, Material: "Vinyl"},
		{ID: "b", ProductID: "WP-002", Name: "Second", Price: 200, Width: 60, Height: 60, Material: "Paper"},
	}
	storage := &mockStorage{items: persisted}
	store := NewStore(storage, nil)

	assert.False(t, store.Loaded())
	require.NoError(t, store.Hydrate(context.Background()))

	assert.True(t, store.Loaded())
	assert.Equal(t, persisted, store.Items())
	assert.InDelta(t, 300.0, store.TotalPrice(), 1e-9)
}

func TestHydrate_SecondCallIsNoop(t *testing.T) {
	storage := &mockStorage{items: []LineItem{{ID: "a", ProductID: "WP-001", Name: "First", Price: 100}}}
	store := NewStore(storage, nil)
	require.NoError(t, store.Hydrate(context.Background()))

	storage.m.Lock()
	storage.items = nil
	storage.m.Unlock()

	require.NoError(t, store.Hydrate(context.Background()))
	assert.Equal(t, 1, store.ItemCount())
}

func TestMutationsBeforeHydrationDoNotPersist(t *testing.T) {
	storage := &mockStorage{}
	store := NewStore(storage, nil)

	_, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)

	// The store is not READY yet, so nothing may be written back: a
	// fresh empty store must not clobber previously persisted data.
	assert.Equal(t, 0, storage.saveCount())
}

func TestSaveFailureKeepsInMemoryState(t *testing.T) {
	storage := &mockStorage{saveErr: assert.AnError}
	notices := &mockNotices{}
	store := NewStore(storage, notices)
	require.NoError(t, store.Hydrate(context.Background()))

	item, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)

	assert.Equal(t, 1, store.ItemCount())
	assert.Equal(t, item.ID, store.Items()[0].ID)
	assert.Equal(t, 1, notices.count())
}

func TestReplace(t *testing.T) {
	store, storage := hydratedStore(t)
	_, err := store.AddItem(context.Background(), validCandidate())
	require.NoError(t, err)
	saves := storage.saveCount()

	external := []LineItem{
		{ID: "x", ProductID: "WP-009", Name: "External", Price: 50, Width: 10, Height: 10, Material: "Paper"},
	}
	store.Replace(external)

	assert.Equal(t, external, store.Items())
	// Applying an observed change must not echo a write back to storage.
	assert.Equal(t, saves, storage.saveCount())
}
