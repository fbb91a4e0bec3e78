// Package storagetest holds a conformance suite every storage.Backend must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Factory returns an empty backend. Cleanup is the factory's responsibility.
type Factory func(t *testing.T) storage.Backend

// SampleCharacter returns a fully populated character with the given id.
func SampleCharacter(id string) *character.Character {
	c, err := character.Build(id, "Aldric", "guerreiro", map[character.AttributeName]int{
		character.Fisico: 6,
		character.Acao:   4,
		character.Mental: 3,
		character.Social: 2,
	})
	if err != nil {
		panic(err)
	}
	c.PV = &character.Vital{Value: 10, Max: 12}
	c.PM = &character.Vital{Value: 5, Max: 6}
	c.Recursos = &character.Resources{
		Moedas: character.Coins{Cobre: 3, Prata: 2, Ouro: 1},
		Carga:  character.Load{Atual: 7.25, Max: 40},
	}
	return c
}

// SampleItem returns a weapon owned by ownerID.
func SampleItem(id, ownerID string) *character.Item {
	return &character.Item{
		ID:        id,
		OwnerID:   ownerID,
		Name:      "Espada Longa",
		Type:      character.Arma,
		Peso:      1.5,
		Equipado:  true,
		Dano:      "1d6+2",
		Categoria: character.CategoriaCorpoACorpo,
	}
}

// Run executes the suite against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("CharacterRoundTrip", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		c := SampleCharacter("c1")
		require.NoError(t, b.PutCharacter(ctx, c))

		got, err := b.GetCharacter(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("CharacterNotFound", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.GetCharacter(context.Background(), "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("PutCharacterReplaces", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		c := SampleCharacter("c1")
		require.NoError(t, b.PutCharacter(ctx, c))
		c.Name = "Aldric II"
		c.PV.Value = 3
		require.NoError(t, b.PutCharacter(ctx, c))

		got, err := b.GetCharacter(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "Aldric II", got.Name)
		assert.Equal(t, 3, got.PV.Value)
	})

	t.Run("ReturnedCharacterIsACopy", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		require.NoError(t, b.PutCharacter(ctx, SampleCharacter("c1")))
		got, err := b.GetCharacter(ctx, "c1")
		require.NoError(t, err)
		got.PV.Value = 0

		again, err := b.GetCharacter(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, 10, again.PV.Value)
	})

	t.Run("ListCharactersOrdered", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		for _, id := range []string{"c3", "c1", "c2"} {
			require.NoError(t, b.PutCharacter(ctx, SampleCharacter(id)))
		}
		cs, err := b.ListCharacters(ctx)
		require.NoError(t, err)
		require.Len(t, cs, 3)
		assert.Equal(t, "c1", cs[0].ID)
		assert.Equal(t, "c2", cs[1].ID)
		assert.Equal(t, "c3", cs[2].ID)
	})

	t.Run("ItemLifecycle", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		require.NoError(t, b.PutCharacter(ctx, SampleCharacter("c1")))
		item := SampleItem("i1", "c1")
		require.NoError(t, b.PutItem(ctx, item))

		got, err := b.GetItem(ctx, "i1")
		require.NoError(t, err)
		assert.Equal(t, item, got)

		item.Equipado = false
		require.NoError(t, b.PutItem(ctx, item))
		got, err = b.GetItem(ctx, "i1")
		require.NoError(t, err)
		assert.False(t, got.Equipado)

		require.NoError(t, b.DeleteItem(ctx, "i1"))
		_, err = b.GetItem(ctx, "i1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, b.DeleteItem(ctx, "i1"), storage.ErrNotFound)
	})

	t.Run("ListItemsByOwner", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		require.NoError(t, b.PutCharacter(ctx, SampleCharacter("c1")))
		require.NoError(t, b.PutCharacter(ctx, SampleCharacter("c2")))
		require.NoError(t, b.PutItem(ctx, SampleItem("i2", "c1")))
		require.NoError(t, b.PutItem(ctx, SampleItem("i1", "c1")))
		require.NoError(t, b.PutItem(ctx, SampleItem("i3", "c2")))

		items, err := b.ListItems(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "i1", items[0].ID)
		assert.Equal(t, "i2", items[1].ID)

		none, err := b.ListItems(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
