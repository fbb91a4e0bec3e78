// Package redisstore provides a storage.Backend on Redis. Each document is a
// JSON string; set keys index characters and items by owner.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/taberneiros/internal/config"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Store persists documents in Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// New wraps client. Keys are namespaced with prefix, which may be empty.
//
// Precondition: client must be non-nil.
func New(client redis.UniversalClient, prefix string) *Store {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Store{client: client, prefix: prefix}
}

// Dial connects to the server named by cfg and verifies it answers PING.
//
// Postcondition: Returns a ready Store or a non-nil error.
func Dial(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.KeyPrefix), nil
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		if k != "" {
			k += ":"
		}
		k += p
	}
	return k
}

func (s *Store) characterKey(id string) string { return s.key("character", id) }
func (s *Store) charactersKey() string         { return s.key("characters") }
func (s *Store) itemKey(id string) string      { return s.key("item", id) }
func (s *Store) ownerItemsKey(ownerID string) string {
	return s.key("owner", ownerID, "items")
}

// GetCharacter implements storage.Backend.
func (s *Store) GetCharacter(ctx context.Context, id string) (*character.Character, error) {
	raw, err := s.client.Get(ctx, s.characterKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	var c character.Character
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character %s: %w", id, err)
	}
	return &c, nil
}

// PutCharacter implements storage.Backend.
func (s *Store) PutCharacter(ctx context.Context, c *character.Character) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.characterKey(c.ID), string(data), 0)
	pipe.SAdd(ctx, s.charactersKey(), c.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store character: %w", err)
	}
	return nil
}

// ListCharacters implements storage.Backend.
func (s *Store) ListCharacters(ctx context.Context) ([]*character.Character, error) {
	ids, err := s.client.SMembers(ctx, s.charactersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list character IDs: %w", err)
	}
	sort.Strings(ids)
	out := make([]*character.Character, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetCharacter(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// GetItem implements storage.Backend.
func (s *Store) GetItem(ctx context.Context, id string) (*character.Item, error) {
	raw, err := s.client.Get(ctx, s.itemKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	var item character.Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	return &item, nil
}

// PutItem implements storage.Backend. Moving an item to another owner
// updates both owner indexes.
func (s *Store) PutItem(ctx context.Context, item *character.Item) error {
	prev, err := s.GetItem(ctx, item.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.itemKey(item.ID), string(data), 0)
	if prev != nil && prev.OwnerID != item.OwnerID {
		pipe.SRem(ctx, s.ownerItemsKey(prev.OwnerID), item.ID)
	}
	pipe.SAdd(ctx, s.ownerItemsKey(item.OwnerID), item.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store item: %w", err)
	}
	return nil
}

// DeleteItem implements storage.Backend.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.itemKey(id))
	pipe.SRem(ctx, s.ownerItemsKey(item.OwnerID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// ListItems implements storage.Backend.
func (s *Store) ListItems(ctx context.Context, ownerID string) ([]*character.Item, error) {
	ids, err := s.client.SMembers(ctx, s.ownerItemsKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list item IDs: %w", err)
	}
	sort.Strings(ids)
	out := make([]*character.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetItem(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Close implements storage.Backend.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ storage.Backend = (*Store)(nil)
