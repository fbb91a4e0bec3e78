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

// CharacterRepository provides character document persistence.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Get returns the character with id.
//
// Postcondition: Returns storage.ErrNotFound when no row matches.
func (r *CharacterRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM characters WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	var c character.Character
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decoding character %s: %w", id, err)
	}
	return &c, nil
}

// Put inserts or replaces the character document.
//
// Precondition: c.ID must be non-empty.
func (r *CharacterRepository) Put(ctx context.Context, c *character.Character) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding character: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO characters (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		c.ID, doc,
	)
	if err != nil {
		return fmt.Errorf("upserting character: %w", err)
	}
	return nil
}

// List returns every character ordered by id.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `SELECT doc FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var out []*character.Character
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		var c character.Character
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decoding character: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
