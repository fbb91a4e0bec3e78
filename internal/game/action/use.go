package action

import (
	"context"

	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

// UseOptions carry the numbers a table supplies when an item is used.
type UseOptions struct {
	// Difficulty is the skill difficulty, or the spell or attack override.
	Difficulty int
	// TargetDefense is the defense of the attacked target.
	TargetDefense int
}

// UseResult reports what using an item produced. Unused fields are nil.
type UseResult struct {
	Check  *check.Result
	Damage *dice.Result
	// Recovery is the potion roll.
	Recovery *dice.Result
}

// UseItem dispatches on the item type: habilidade rolls the skill, magia
// casts, arma attacks (only when equipped) and pocao is drunk. Items whose
// prerequisites the character does not meet cannot be used.
//
// Postcondition: returns (nil, nil) when a potion is declined.
func (r *Resolver) UseItem(ctx context.Context, actorID, itemID string, opts UseOptions) (*UseResult, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	item, err := r.ownedItem(ctx, actor, itemID, "", "")
	if err != nil {
		return nil, err
	}
	if !rules.MeetsPrerequisites(actor, item) {
		return nil, cdterr.Validation("Pré-requisitos não atendidos").WithMeta("item_id", item.ID)
	}

	switch item.Type {
	case character.Habilidade:
		res, err := r.RollSkill(ctx, actorID, itemID, opts.Difficulty)
		if err != nil {
			return nil, err
		}
		return &UseResult{Check: res}, nil
	case character.Magia:
		res, err := r.CastSpell(ctx, actorID, itemID, SpellOptions{Difficulty: opts.Difficulty})
		if err != nil {
			return nil, err
		}
		return &UseResult{Check: res}, nil
	case character.Arma:
		if !item.Equipado {
			return nil, cdterr.Validation("Arma não está equipada!").WithMeta("item_id", item.ID)
		}
		res, err := r.Attack(ctx, actorID, itemID, AttackOptions{Difficulty: opts.Difficulty, TargetDefense: opts.TargetDefense})
		if err != nil {
			return nil, err
		}
		return &UseResult{Check: res.Check, Damage: res.Damage}, nil
	case character.Pocao:
		roll, err := r.UsePotion(ctx, actorID, itemID)
		if err != nil || roll == nil {
			return nil, err
		}
		return &UseResult{Recovery: roll}, nil
	}
	return nil, cdterr.Validationf("%s não pode ser usado", item.Name).WithMeta("item_id", item.ID)
}
