package cart

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDimensions = errors.New("width and height must be between 1 and 999 cm")
	ErrInvalidPrice      = errors.New("price must be a finite positive number")
)

const (
	minDimensionCm = 1
	maxDimensionCm = 999

	persistTimeout = 2 * time.Second
)

// Storage is the durable slot holding the serialized item list under the
// session's fixed key.
type Storage interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Clear(ctx context.Context) error
}

// Notices receives non-fatal user-facing messages, e.g. when persistence is
// degraded but the in-memory cart stays usable.
type Notices interface {
	Notify(message string)
}

type phase int

const (
	phaseUninitialized phase = iota
	phaseLoading
	phaseReady
)

// Store is the single source of truth for one session's cart. It is
// explicitly constructed, hydrated once, and never torn down during a
// session. Mutations are applied one at a time in call order; only after
// hydration do they write back to storage, so a not-yet-loaded store can
// never clobber previously persisted data.
type Store struct {
	mu      sync.Mutex
	state   State
	phase   phase
	storage Storage
	notices Notices
}

func NewStore(storage Storage, notices Notices) *Store {
	return &Store{
		state:   State{Items: []LineItem{}},
		storage: storage,
		notices: notices,
	}
}

// Hydrate performs the one-time load from storage. Calling it again after a
// successful load is a no-op.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == phaseReady {
		return nil
	}
	s.phase = phaseLoading

	items, err := s.storage.Load(ctx)
	if err != nil {
		s.phase = phaseUninitialized
		return err
	}
	if items == nil {
		items = []LineItem{}
	}
	s.state = reduce(s.state, setItems{items: items})
	s.phase = phaseReady
	return nil
}

// AddItem validates the candidate, assigns it a fresh id, appends it and
// persists the new state. The candidate's ID field is ignored. On validation
// failure nothing changes.
func (s *Store) AddItem(ctx context.Context, candidate LineItem) (LineItem, error) {
	if candidate.Width < minDimensionCm || candidate.Width > maxDimensionCm ||
		candidate.Height < minDimensionCm || candidate.Height > maxDimensionCm {
		return LineItem{}, ErrInvalidDimensions
	}
	if candidate.Price <= 0 || math.IsNaN(candidate.Price) || math.IsInf(candidate.Price, 0) {
		return LineItem{}, ErrInvalidPrice
	}

	candidate.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, addItem{item: candidate})
	s.persist(ctx)
	return candidate, nil
}

// RemoveItem removes the item with the given id. Removing an absent id is a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, removeItem{id: id})
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, clearCart{})
	s.persist(ctx)
}

// Replace swaps the in-memory item list for one observed on the change feed.
// Last write wins; the caller is expected to have validated the payload
// schema already (see RedisSlot.Watch).
func (s *Store) Replace(items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, setItems{items: items})
}

// Items returns the ordered item list as a copy.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]LineItem, len(s.state.Items))
	copy(items, s.state.Items)
	return items
}

// TotalPrice is the sum of item prices, 0 for an empty cart.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.state.Items {
		total += it.Price
	}
	return total
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items)
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loaded
}

// persist writes the current item list back to storage. Write failures never
// roll back the in-memory mutation: the cart stays usable with persistence
// degraded. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if s.phase != phaseReady {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	if err := s.storage.Save(ctx, s.state.Items); err != nil {
		log.Printf("cart save failed: %v", err)
		if s.notices != nil {
			s.notices.Notify("cart could not be saved, changes may be lost")
		}
	}
}
