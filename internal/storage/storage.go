// Package storage defines the document store contract, the write options
// that tag mutations, and the Documents dispatcher that turns writes into
// Listener events.
package storage

import (
	"context"
	"errors"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
)

// ErrNotFound is returned when a character or item lookup yields no document.
var ErrNotFound = errors.New("document not found")

// ErrAlreadyExists is returned when creating a document whose id is taken.
var ErrAlreadyExists = errors.New("document already exists")

// Backend persists character and item documents.
//
// Implementations MUST be safe for concurrent use and MUST return copies:
// callers may mutate what they receive without affecting stored state.
type Backend interface {
	// GetCharacter returns the character with id, or ErrNotFound.
	GetCharacter(ctx context.Context, id string) (*character.Character, error)
	// PutCharacter inserts or replaces the character document.
	PutCharacter(ctx context.Context, c *character.Character) error
	// ListCharacters returns every character ordered by id.
	ListCharacters(ctx context.Context) ([]*character.Character, error)

	// GetItem returns the item with id, or ErrNotFound.
	GetItem(ctx context.Context, id string) (*character.Item, error)
	// PutItem inserts or replaces the item document.
	PutItem(ctx context.Context, item *character.Item) error
	// DeleteItem removes the item with id, or returns ErrNotFound.
	DeleteItem(ctx context.Context, id string) error
	// ListItems returns the items owned by ownerID ordered by id.
	ListItems(ctx context.Context, ownerID string) ([]*character.Item, error)

	// Close releases backend resources.
	Close() error
}

// WriteOptions tags a mutation.
type WriteOptions struct {
	// SuppressRecompute marks a write produced by the recomputation pipeline
	// itself; listeners must not recompute derived stats for it.
	SuppressRecompute bool
	// SkipOwnerRecompute marks an item write that must not trigger a
	// recomputation of its owner's equipment totals.
	SkipOwnerRecompute bool
}

// WriteOption configures WriteOptions.
type WriteOption func(*WriteOptions)

// SuppressRecompute tags a write as coming from the recomputation pipeline.
func SuppressRecompute() WriteOption {
	return func(o *WriteOptions) { o.SuppressRecompute = true }
}

// SkipOwnerRecompute tags an item write as irrelevant to its owner's totals.
func SkipOwnerRecompute() WriteOption {
	return func(o *WriteOptions) { o.SkipOwnerRecompute = true }
}

func buildOptions(opts []WriteOption) WriteOptions {
	var o WriteOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CharacterEvent describes a character write.
type CharacterEvent struct {
	// Character is the state after the write. Listeners must not mutate it.
	Character *character.Character
	// Changed holds the fields the write touched; nil on creation.
	Changed character.FieldSet
	Options WriteOptions
}

// ItemEvent describes an item write.
type ItemEvent struct {
	// Item is the state after the write, or the removed item on deletion.
	Item *character.Item
	// Changed holds the fields an update touched; nil on create and delete.
	Changed []character.ItemField
	Options WriteOptions
}

// Listener receives document events after the write has been persisted.
// Callbacks run synchronously on the writer's goroutine.
type Listener interface {
	CharacterCreated(ctx context.Context, ev CharacterEvent)
	CharacterUpdated(ctx context.Context, ev CharacterEvent)
	ItemCreated(ctx context.Context, ev ItemEvent)
	ItemUpdated(ctx context.Context, ev ItemEvent)
	ItemDeleted(ctx context.Context, ev ItemEvent)
}
