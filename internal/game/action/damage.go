package action

import (
	"context"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
)

// DamageOptions label a damage roll.
type DamageOptions struct {
	// Flavor is the caption; defaults to "Dano".
	Flavor string
	// Source is the weapon or spell name shown as the card title; defaults to "Dano".
	Source string
}

// RollDamage evaluates a damage formula for actor and posts the result.
//
// Precondition: formula uses only [0-9d+\-*/() ].
// Postcondition: on error nothing was rolled or posted.
func (r *Resolver) RollDamage(ctx context.Context, actor *character.Character, formula string, opts DamageOptions) (*dice.Result, error) {
	if actor == nil {
		return nil, cdterr.Validation("Ator inválido para rolagem de dano")
	}
	if err := dice.ValidateDamageFormula(formula); err != nil {
		return nil, err
	}
	roll, err := r.roller.Evaluate(formula, nil)
	if err != nil {
		return nil, err
	}

	flavor := opts.Flavor
	if flavor == "" {
		flavor = "Dano"
	}
	title := opts.Source
	if title == "" {
		title = "Dano"
	}
	r.send(ctx, chat.Message{
		Speaker: actor.Name,
		Flavor:  flavor,
		Card: chat.Card{
			Kind:    "damage",
			Title:   title,
			Formula: formula,
			Total:   dice.FormatNumber(roll.Total),
		},
		Roll: &roll,
	})
	return &roll, nil
}

// RollDamageFor loads the stored character actorID and rolls formula for it.
func (r *Resolver) RollDamageFor(ctx context.Context, actorID, formula string, opts DamageOptions) (*dice.Result, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return r.RollDamage(ctx, actor, formula, opts)
}
