package action

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
)

// DefaultAttackDifficulty applies when neither an override nor a target defense is given.
const DefaultAttackDifficulty = 10

// AttackOptions tune an attack.
type AttackOptions struct {
	// Difficulty overrides everything else when positive.
	Difficulty int
	// TargetDefense is used when Difficulty is zero.
	TargetDefense int
}

// AttackResult is a resolved attack and the damage it caused, if any.
type AttackResult struct {
	Check  *check.Result
	Damage *dice.Result
}

// AttackAttribute returns acao for ranged weapons and fisico otherwise.
func AttackAttribute(weapon *character.Item) character.AttributeName {
	if weapon.IsRanged() {
		return character.Acao
	}
	return character.Fisico
}

// AttackDifficulty returns the override, else the target defense, else
// DefaultAttackDifficulty.
func AttackDifficulty(opts AttackOptions) int {
	switch {
	case opts.Difficulty > 0:
		return opts.Difficulty
	case opts.TargetDefense > 0:
		return opts.TargetDefense
	}
	return DefaultAttackDifficulty
}

// Attack resolves an attack with the arma item weaponID owned by actorID.
// A critical success rolls "(dano) * 2" instead of the normal damage; a
// success rolls the normal damage. A ranged weapon with a finite pool spends
// one round on every resolved attack.
//
// Precondition: the item is an arma owned by the actor.
// Postcondition: on error no dice were rolled and ammunition is unchanged.
func (r *Resolver) Attack(ctx context.Context, actorID, weaponID string, opts AttackOptions) (*AttackResult, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	weapon, err := r.ownedItem(ctx, actor, weaponID, character.Arma, "Item não é uma arma")
	if err != nil {
		return nil, err
	}
	if weapon.HasFiniteAmmo() && weapon.Municao <= 0 {
		return nil, cdterr.Resourcef("Sem munição!").WithMeta("item_id", weapon.ID)
	}

	req := r.request(actor, AttackAttribute(weapon), 0, AttackDifficulty(opts),
		"Ataque com "+weapon.Name,
		r.notice(chat.Info, "Acerto crítico! Dano dobrado!"),
		r.notice(chat.Warn, "Falha crítica no ataque!"),
	)
	res, err := r.checks.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	out := &AttackResult{Check: res}

	if weapon.Dano != "" {
		switch res.Outcome {
		case check.CriticalSuccess:
			out.Damage = r.weaponDamage(ctx, actor, weapon, "("+weapon.Dano+") * 2", "Dano Crítico")
		case check.Success:
			out.Damage = r.weaponDamage(ctx, actor, weapon, weapon.Dano, "Dano")
		}
	}

	if weapon.HasFiniteAmmo() {
		if err := r.spendAmmo(ctx, weapon.ID); err != nil {
			r.logger.Error("spending ammunition", zap.String("item_id", weapon.ID), zap.Error(err))
			r.notifier.Notify(ctx, chat.Warn, "Erro ao gastar munição")
		}
	}
	return out, nil
}

// spendAmmo decrements municao from the item as stored after the roll.
func (r *Resolver) spendAmmo(ctx context.Context, weaponID string) error {
	fresh, err := r.store.Item(ctx, weaponID)
	if err != nil {
		return err
	}
	left := max(0, fresh.Municao-1)
	_, err = r.store.UpdateItem(ctx, weaponID, character.ItemPatch{Municao: character.Ptr(left)})
	return err
}

// weaponDamage rolls damage after a resolved attack. A failure is reported
// and logged; the attack itself stands.
func (r *Resolver) weaponDamage(ctx context.Context, actor *character.Character, weapon *character.Item, formula, flavor string) *dice.Result {
	roll, err := r.RollDamage(ctx, actor, formula, DamageOptions{Flavor: flavor, Source: weapon.Name})
	if err != nil {
		r.logger.Error("rolling weapon damage",
			zap.String("item_id", weapon.ID),
			zap.String("formula", formula),
			zap.Error(err),
		)
		r.notifier.Notify(ctx, chat.Error, "Erro ao rolar dano: "+err.Error())
		return nil
	}
	return roll
}
