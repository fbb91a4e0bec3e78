package action

import (
	"context"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

// UsePotion asks for confirmation, rolls the pocao item's recovery into PV
// (tipo cura) or PM (tipo PM) capped at max, and consumes one dose.
//
// Postcondition: returns (nil, nil) when the user declines; nothing changed.
// The last dose deletes the item.
func (r *Resolver) UsePotion(ctx context.Context, actorID, potionID string) (*dice.Result, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	potion, err := r.ownedItem(ctx, actor, potionID, character.Pocao, "Item não é uma poção")
	if err != nil {
		return nil, err
	}

	var (
		pool   character.Field
		flavor string
	)
	switch potion.Tipo {
	case character.PocaoCura:
		pool, flavor = character.PVValue, "Cura de "+potion.Name
	case character.PocaoPM:
		pool, flavor = character.PMValue, "Recuperação de PM de "+potion.Name
	}
	if pool == "" || potion.Recuperacao == "" {
		return nil, cdterr.Validationf("%s não tem efeito definido", potion.Name).
			WithMeta("item_id", potion.ID)
	}

	ok, err := r.confirmer.Confirm(ctx, "Usar Poção", "Usar "+potion.Name+"?")
	if err != nil || !ok {
		return nil, err
	}

	roll, err := r.roller.Evaluate(potion.Recuperacao, nil)
	if err != nil {
		return nil, err
	}
	// Re-read: the confirmation may have taken a while.
	actor, err = r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if p := rules.HealPatch(actor, pool, roll.IntTotal()); !p.IsEmpty() {
		if _, err := r.store.UpdateCharacter(ctx, actor.ID, p); err != nil {
			return nil, cdterr.Wrap(err, "aplicando efeito da poção")
		}
	}
	r.send(ctx, chat.Message{
		Speaker: actor.Name,
		Flavor:  flavor,
		Card: chat.Card{
			Kind:    "potion",
			Title:   potion.Name,
			Formula: potion.Recuperacao,
			Total:   dice.FormatNumber(roll.Total),
		},
		Roll: &roll,
	})

	if potion.Quantidade > 1 {
		_, err = r.store.UpdateItem(ctx, potion.ID, character.ItemPatch{Quantidade: character.Ptr(potion.Quantidade - 1)})
	} else {
		err = r.store.DeleteItem(ctx, potion.ID)
	}
	if err != nil {
		return nil, cdterr.Wrap(err, "consumindo poção")
	}
	r.notifier.Notify(ctx, chat.Info, potion.Name+" usada!")
	return &roll, nil
}
