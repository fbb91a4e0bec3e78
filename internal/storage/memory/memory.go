// Package memory provides an in-process storage.Backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Store keeps documents in maps guarded by a RWMutex.
//
// Invariant: stored values are never shared with callers.
type Store struct {
	mu         sync.RWMutex
	characters map[string]*character.Character
	items      map[string]*character.Item
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		characters: make(map[string]*character.Character),
		items:      make(map[string]*character.Item),
	}
}

// GetCharacter implements storage.Backend.
func (s *Store) GetCharacter(_ context.Context, id string) (*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return c.Clone(), nil
}

// PutCharacter implements storage.Backend.
func (s *Store) PutCharacter(_ context.Context, c *character.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[c.ID] = c.Clone()
	return nil
}

// ListCharacters implements storage.Backend.
func (s *Store) ListCharacters(_ context.Context) ([]*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*character.Character, 0, len(s.characters))
	for _, c := range s.characters {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetItem implements storage.Backend.
func (s *Store) GetItem(_ context.Context, id string) (*character.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return item.Clone(), nil
}

// PutItem implements storage.Backend.
func (s *Store) PutItem(_ context.Context, item *character.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item.Clone()
	return nil
}

// DeleteItem implements storage.Backend.
func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// ListItems implements storage.Backend.
func (s *Store) ListItems(_ context.Context, ownerID string) ([]*character.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*character.Item
	for _, item := range s.items {
		if item.OwnerID == ownerID {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements storage.Backend.
func (s *Store) Close() error { return nil }

var _ storage.Backend = (*Store)(nil)
