package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// ItemRepository provides item document persistence.
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates an ItemRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

// Get returns the item with id, or storage.ErrNotFound.
func (r *ItemRepository) Get(ctx context.Context, id string) (*character.Item, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM items WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying item: %w", err)
	}
	var item character.Item
	if err := json.Unmarshal(doc, &item); err != nil {
		return nil, fmt.Errorf("decoding item %s: %w", id, err)
	}
	return &item, nil
}

// Put inserts or replaces the item document.
func (r *ItemRepository) Put(ctx context.Context, item *character.Item) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO items (id, owner_id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET owner_id = EXCLUDED.owner_id, doc = EXCLUDED.doc, updated_at = NOW()`,
		item.ID, item.OwnerID, doc,
	)
	if err != nil {
		return fmt.Errorf("upserting item: %w", err)
	}
	return nil
}

// Delete removes the item with id.
//
// Postcondition: Returns storage.ErrNotFound when no row was deleted.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListByOwner returns the items owned by ownerID ordered by id.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*character.Item, error) {
	rows, err := r.db.Query(ctx, `SELECT doc FROM items WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var out []*character.Item
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		var item character.Item
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, fmt.Errorf("decoding item: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}
