// Package sqlite provides a storage.Backend on a local SQLite file using
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/storage"
	"github.com/cory-johannsen/taberneiros/migrations"
)

// Store persists JSON documents in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
//
// Precondition: path names a file; in-memory databases are not supported.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Migrate applies every pending migration to the database at path.
//
// Postcondition: the schema is at the latest version, or a non-nil error is returned.
func Migrate(path string) error {
	m, err := NewMigrator(path)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating sqlite: %w", err)
	}
	return nil
}

// NewMigrator returns a migrator over the embedded SQLite migrations for the
// database at path. Closing the migrator closes the database.
func NewMigrator(path string) (*migrate.Migrate, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %q: %w", path, err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}
	src, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// GetCharacter implements storage.Backend.
func (s *Store) GetCharacter(ctx context.Context, id string) (*character.Character, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM characters WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	var c character.Character
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("decoding character %s: %w", id, err)
	}
	return &c, nil
}

// PutCharacter implements storage.Backend.
func (s *Store) PutCharacter(ctx context.Context, c *character.Character) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding character: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO characters (id, doc, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		c.ID, string(doc))
	if err != nil {
		return fmt.Errorf("upserting character: %w", err)
	}
	return nil
}

// ListCharacters implements storage.Backend.
func (s *Store) ListCharacters(ctx context.Context) ([]*character.Character, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var out []*character.Character
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		var c character.Character
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("decoding character: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetItem implements storage.Backend.
func (s *Store) GetItem(ctx context.Context, id string) (*character.Item, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM items WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying item: %w", err)
	}
	var item character.Item
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return nil, fmt.Errorf("decoding item %s: %w", id, err)
	}
	return &item, nil
}

// PutItem implements storage.Backend.
func (s *Store) PutItem(ctx context.Context, item *character.Item) error {
	doc, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, owner_id, doc, updated_at) VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET owner_id = excluded.owner_id, doc = excluded.doc, updated_at = excluded.updated_at`,
		item.ID, item.OwnerID, string(doc))
	if err != nil {
		return fmt.Errorf("upserting item: %w", err)
	}
	return nil
}

// DeleteItem implements storage.Backend.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListItems implements storage.Backend.
func (s *Store) ListItems(ctx context.Context, ownerID string) ([]*character.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM items WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var out []*character.Item
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		var item character.Item
		if err := json.Unmarshal([]byte(doc), &item); err != nil {
			return nil, fmt.Errorf("decoding item: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

// Close implements storage.Backend.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.Backend = (*Store)(nil)
