package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
)

// Documents is the single write path to a Backend. Every successful write
// is followed by exactly one Listener event.
//
// Read-apply-write cycles on the same document are serialized.
type Documents struct {
	backend Backend
	logger  *zap.Logger

	mu        sync.RWMutex
	listeners []Listener

	locks keyedMutex
}

// NewDocuments wraps backend.
//
// Precondition: backend and logger must be non-nil.
func NewDocuments(backend Backend, logger *zap.Logger) *Documents {
	return &Documents{backend: backend, logger: logger}
}

// Subscribe registers l for every subsequent event.
func (d *Documents) Subscribe(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

func (d *Documents) each(fn func(Listener)) {
	d.mu.RLock()
	ls := make([]Listener, len(d.listeners))
	copy(ls, d.listeners)
	d.mu.RUnlock()
	for _, l := range ls {
		fn(l)
	}
}

// Character returns a fresh copy of the character with id.
//
// Postcondition: a missing document yields an error coded validation that wraps ErrNotFound.
func (d *Documents) Character(ctx context.Context, id string) (*character.Character, error) {
	c, err := d.backend.GetCharacter(ctx, id)
	if err != nil {
		return nil, wrapRead(err, "Personagem não encontrado", id)
	}
	return c, nil
}

// Characters lists every character.
func (d *Documents) Characters(ctx context.Context) ([]*character.Character, error) {
	cs, err := d.backend.ListCharacters(ctx)
	if err != nil {
		return nil, cdterr.Persistence(err, "listing characters")
	}
	return cs, nil
}

// Item returns a fresh copy of the item with id.
func (d *Documents) Item(ctx context.Context, id string) (*character.Item, error) {
	item, err := d.backend.GetItem(ctx, id)
	if err != nil {
		return nil, wrapRead(err, "Item não encontrado", id)
	}
	return item, nil
}

// Items lists the items owned by ownerID.
func (d *Documents) Items(ctx context.Context, ownerID string) ([]*character.Item, error) {
	items, err := d.backend.ListItems(ctx, ownerID)
	if err != nil {
		return nil, cdterr.Persistence(err, "listing items").WithMeta("owner_id", ownerID)
	}
	return items, nil
}

// CreateCharacter persists a new character, assigning an id when c.ID is empty.
//
// Postcondition: on success c.ID is set and CharacterCreated has fired.
func (d *Documents) CreateCharacter(ctx context.Context, c *character.Character) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	unlock := d.locks.lock("character:" + c.ID)
	defer unlock()

	if _, err := d.backend.GetCharacter(ctx, c.ID); err == nil {
		return cdterr.WrapWithCode(ErrAlreadyExists, cdterr.CodeValidation, "Personagem já existe").WithMeta("id", c.ID)
	} else if !errors.Is(err, ErrNotFound) {
		return cdterr.Persistence(err, "checking character")
	}
	if err := d.backend.PutCharacter(ctx, c); err != nil {
		return cdterr.Persistence(err, "creating character").WithMeta("id", c.ID)
	}
	d.logger.Debug("character created", zap.String("id", c.ID), zap.String("name", c.Name))
	ev := CharacterEvent{Character: c.Clone()}
	d.each(func(l Listener) { l.CharacterCreated(ctx, ev) })
	return nil
}

// UpdateCharacter reads the character, applies patch and writes it back.
//
// Postcondition: returns the stored state; an empty patch writes nothing and fires no event.
func (d *Documents) UpdateCharacter(ctx context.Context, id string, patch character.Patch, opts ...WriteOption) (*character.Character, error) {
	o := buildOptions(opts)
	unlock := d.locks.lock("character:" + id)
	c, err := d.backend.GetCharacter(ctx, id)
	if err != nil {
		unlock()
		return nil, wrapRead(err, "Personagem não encontrado", id)
	}
	if patch.IsEmpty() {
		unlock()
		return c, nil
	}
	patch.Apply(c)
	if err := d.backend.PutCharacter(ctx, c); err != nil {
		unlock()
		return nil, cdterr.Persistence(err, "updating character").WithMeta("id", id)
	}
	unlock()

	d.logger.Debug("character updated",
		zap.String("id", id),
		zap.Any("patch", patch),
		zap.Bool("suppress_recompute", o.SuppressRecompute),
	)
	ev := CharacterEvent{Character: c.Clone(), Changed: patch.FieldSet(), Options: o}
	d.each(func(l Listener) { l.CharacterUpdated(ctx, ev) })
	return c, nil
}

// CreateItem persists a new item, assigning an id when item.ID is empty.
//
// Precondition: item.OwnerID, when set, names an existing character.
func (d *Documents) CreateItem(ctx context.Context, item *character.Item, opts ...WriteOption) error {
	if !character.ValidItemTypes[item.Type] {
		return cdterr.Validationf("Tipo de item inválido: %q", item.Type)
	}
	if item.OwnerID != "" {
		if _, err := d.Character(ctx, item.OwnerID); err != nil {
			return err
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if err := d.backend.PutItem(ctx, item); err != nil {
		return cdterr.Persistence(err, "creating item").WithMeta("id", item.ID)
	}
	d.logger.Debug("item created", zap.String("id", item.ID), zap.String("owner_id", item.OwnerID))
	ev := ItemEvent{Item: item.Clone(), Options: buildOptions(opts)}
	d.each(func(l Listener) { l.ItemCreated(ctx, ev) })
	return nil
}

// UpdateItem reads the item, applies patch and writes it back.
//
// Postcondition: an empty patch writes nothing and fires no event.
func (d *Documents) UpdateItem(ctx context.Context, id string, patch character.ItemPatch, opts ...WriteOption) (*character.Item, error) {
	unlock := d.locks.lock("item:" + id)
	item, err := d.backend.GetItem(ctx, id)
	if err != nil {
		unlock()
		return nil, wrapRead(err, "Item não encontrado", id)
	}
	if patch.IsEmpty() {
		unlock()
		return item, nil
	}
	patch.Apply(item)
	if err := d.backend.PutItem(ctx, item); err != nil {
		unlock()
		return nil, cdterr.Persistence(err, "updating item").WithMeta("id", id)
	}
	unlock()

	d.logger.Debug("item updated", zap.String("id", id), zap.Any("patch", patch))
	ev := ItemEvent{Item: item.Clone(), Changed: patch.Fields(), Options: buildOptions(opts)}
	d.each(func(l Listener) { l.ItemUpdated(ctx, ev) })
	return item, nil
}

// DeleteItem removes the item with id.
func (d *Documents) DeleteItem(ctx context.Context, id string, opts ...WriteOption) error {
	unlock := d.locks.lock("item:" + id)
	item, err := d.backend.GetItem(ctx, id)
	if err != nil {
		unlock()
		return wrapRead(err, "Item não encontrado", id)
	}
	if err := d.backend.DeleteItem(ctx, id); err != nil {
		unlock()
		return cdterr.Persistence(err, "deleting item").WithMeta("id", id)
	}
	unlock()

	d.logger.Debug("item deleted", zap.String("id", id), zap.String("owner_id", item.OwnerID))
	ev := ItemEvent{Item: item, Options: buildOptions(opts)}
	d.each(func(l Listener) { l.ItemDeleted(ctx, ev) })
	return nil
}

func wrapRead(err error, notFound, id string) error {
	if errors.Is(err, ErrNotFound) {
		return cdterr.WrapWithCode(err, cdterr.CodeValidation, notFound).WithMeta("id", id)
	}
	return cdterr.Persistence(err, "reading document").WithMeta("id", id)
}

// keyedMutex hands out one mutex per key. Entries are never evicted; the key
// space is bounded by the number of documents.
type keyedMutex struct {
	m sync.Map
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.m.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
