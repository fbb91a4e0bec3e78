package postgres

import (
	"context"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Store adapts the repositories to storage.Backend.
type Store struct {
	pool       *Pool
	characters *CharacterRepository
	items      *ItemRepository
}

// NewStore builds a Store over pool. Close releases the pool.
//
// Precondition: pool is connected and migrated.
func NewStore(pool *Pool) *Store {
	return &Store{
		pool:       pool,
		characters: NewCharacterRepository(pool.DB()),
		items:      NewItemRepository(pool.DB()),
	}
}

// GetCharacter implements storage.Backend.
func (s *Store) GetCharacter(ctx context.Context, id string) (*character.Character, error) {
	return s.characters.Get(ctx, id)
}

// PutCharacter implements storage.Backend.
func (s *Store) PutCharacter(ctx context.Context, c *character.Character) error {
	return s.characters.Put(ctx, c)
}

// ListCharacters implements storage.Backend.
func (s *Store) ListCharacters(ctx context.Context) ([]*character.Character, error) {
	return s.characters.List(ctx)
}

// GetItem implements storage.Backend.
func (s *Store) GetItem(ctx context.Context, id string) (*character.Item, error) {
	return s.items.Get(ctx, id)
}

// PutItem implements storage.Backend.
func (s *Store) PutItem(ctx context.Context, item *character.Item) error {
	return s.items.Put(ctx, item)
}

// DeleteItem implements storage.Backend.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

// ListItems implements storage.Backend.
func (s *Store) ListItems(ctx context.Context, ownerID string) ([]*character.Item, error) {
	return s.items.ListByOwner(ctx, ownerID)
}

// Close implements storage.Backend.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var _ storage.Backend = (*Store)(nil)
