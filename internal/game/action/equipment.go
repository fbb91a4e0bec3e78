package action

import (
	"context"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

var equippable = map[character.ItemType]bool{
	character.Arma:        true,
	character.Armadura:    true,
	character.Escudo:      true,
	character.Equipamento: true,
}

// ToggleEquip flips the equipado flag of itemID. Only one armadura and one
// escudo may be equipped at a time.
//
// Postcondition: returns the updated item; the owner's defense and load are
// recomputed by the item hooks.
func (r *Resolver) ToggleEquip(ctx context.Context, actorID, itemID string) (*character.Item, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	item, err := r.ownedItem(ctx, actor, itemID, "", "")
	if err != nil {
		return nil, err
	}
	equip := !item.Equipado
	if equip {
		if err := r.canEquip(ctx, item); err != nil {
			return nil, err
		}
	}
	return r.store.UpdateItem(ctx, item.ID, character.ItemPatch{Equipado: character.Ptr(equip)})
}

func (r *Resolver) canEquip(ctx context.Context, item *character.Item) error {
	refuse := cdterr.Validation("Não é possível equipar este item!").WithMeta("item_id", item.ID)
	if !equippable[item.Type] {
		return refuse
	}
	if item.Type != character.Armadura && item.Type != character.Escudo {
		return nil
	}
	owned, err := r.store.Items(ctx, item.OwnerID)
	if err != nil {
		return err
	}
	for _, other := range owned {
		if other.ID != item.ID && other.Type == item.Type && other.Equipado {
			return refuse.WithMeta("equipped_id", other.ID)
		}
	}
	return nil
}

// AddItem gives a copy of item to actorID. Items whose prerequisites the
// character does not meet are added only after confirmation. Spell costs
// and class skill bonuses are adjusted for the character.
//
// Postcondition: returns the stored copy, or (nil, nil) when the user declines.
func (r *Resolver) AddItem(ctx context.Context, actorID string, item *character.Item) (*character.Item, error) {
	if item == nil {
		return nil, cdterr.Validation("Item inválido")
	}
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !rules.MeetsPrerequisites(actor, item) {
		ok, err := r.confirmer.Confirm(ctx, "Pré-requisitos não atendidos",
			item.Name+" possui pré-requisitos não atendidos. Adicionar mesmo assim?")
		if err != nil || !ok {
			return nil, err
		}
	}
	owned := rules.AdjustItemForCharacter(actor, item)
	owned.ID = ""
	owned.OwnerID = actor.ID
	if err := r.store.CreateItem(ctx, owned); err != nil {
		return nil, err
	}
	r.notifier.Notify(ctx, chat.Info, item.Name+" adicionado a "+actor.Name+"!")
	return owned, nil
}
