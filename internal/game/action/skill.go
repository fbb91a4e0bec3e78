package action

import (
	"context"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

// InitiativeFormula is rolled for every combatant.
const InitiativeFormula = "2d6 + @acao"

// SkillAttribute returns the attribute a habilidade item rolls, fisico when unset.
func SkillAttribute(skill *character.Item) character.AttributeName {
	if name, ok := character.ParseAttribute(skill.Atributo); ok {
		return name
	}
	return character.Fisico
}

// RollSkill resolves a check with the habilidade item skillID: its attribute
// plus its bonus against difficulty.
func (r *Resolver) RollSkill(ctx context.Context, actorID, skillID string, difficulty int) (*check.Result, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	skill, err := r.ownedItem(ctx, actor, skillID, character.Habilidade, "Item não é uma habilidade")
	if err != nil {
		return nil, err
	}
	req := r.request(actor, SkillAttribute(skill), skill.Bonus, difficulty, skill.Name,
		r.notice(chat.Info, "Sucesso crítico em "+skill.Name+"!"),
		nil,
	)
	return r.checks.Resolve(ctx, req)
}

// RollInitiative rolls 2d6 + acao for actorID and posts the result.
func (r *Resolver) RollInitiative(ctx context.Context, actorID string) (*dice.Result, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	acao := rules.AttributeValue(actor, character.Acao)
	roll, err := r.roller.Evaluate(InitiativeFormula, map[string]float64{"acao": float64(acao)})
	if err != nil {
		return nil, err
	}
	r.send(ctx, chat.Message{
		Speaker: actor.Name,
		Flavor:  "Iniciativa",
		Card: chat.Card{
			Kind:    "initiative",
			Title:   "Iniciativa",
			Formula: "2d6 + " + dice.FormatNumber(float64(acao)),
			Total:   dice.FormatNumber(roll.Total),
		},
		Roll: &roll,
	})
	return &roll, nil
}
