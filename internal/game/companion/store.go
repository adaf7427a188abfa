// Package companion resolves companion unlock state and level into stat
// effects for the calculator.
package companion

import (
	"context"
	"maps"
	"sync"

	"github.com/udisondev/statcalc/internal/model"
)

//go:generate mockgen -destination=mock_companion/store.go -package=mock_companion . Store,Lookup

// Store holds the mutable unlock state and level of companions.
type Store interface {
	// Get returns the state of key. ok is false when the key was never stored.
	Get(ctx context.Context, key model.CompanionKey) (state model.CompanionState, ok bool, err error)
	// List returns every stored companion.
	List(ctx context.Context) (map[model.CompanionKey]model.CompanionState, error)
	Put(ctx context.Context, key model.CompanionKey, state model.CompanionState) error
}

// Lookup resolves the effects of a companion at a level.
// Implementations return nil, false for an invalid class, rarity or level.
type Lookup interface {
	Lookup(class model.CompanionClass, rarity model.Rarity, level int) (*model.EffectBundle, bool)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[model.CompanionKey]model.CompanionState
}

// NewMemoryStore creates a MemoryStore seeded with states (may be nil).
func NewMemoryStore(states map[model.CompanionKey]model.CompanionState) *MemoryStore {
	s := &MemoryStore{states: make(map[model.CompanionKey]model.CompanionState, len(states))}
	maps.Copy(s.states, states)
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key model.CompanionKey) (model.CompanionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[key]
	return st, ok, nil
}

// List implements Store. The returned map is a copy.
func (s *MemoryStore) List(_ context.Context) (map[model.CompanionKey]model.CompanionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.states), nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key model.CompanionKey, state model.CompanionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state
	return nil
}
