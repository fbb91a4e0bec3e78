package action

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

// LevelUp advances actorID one level when it has enough XP.
//
// Postcondition: ok is false with a nil error when the XP is short; nothing changed.
func (r *Resolver) LevelUp(ctx context.Context, actorID string) (newLevel int, ok bool, err error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return 0, false, err
	}
	p, newLevel, ok := rules.LevelUpPatch(actor)
	if !ok {
		return 0, false, nil
	}
	if _, err := r.store.UpdateCharacter(ctx, actor.ID, p); err != nil {
		return 0, false, err
	}
	r.notifier.Notify(ctx, chat.Info, fmt.Sprintf("%s subiu para o nível %d!", actor.Name, newLevel))
	r.send(ctx, chat.Message{
		Speaker: actor.Name,
		Card: chat.Card{
			Kind:        "level-up",
			Title:       "Subiu de Nível!",
			Description: fmt.Sprintf("%s agora é nível %d! Ganhou 1 ponto de atributo e 2 pontos de habilidade!", actor.Name, newLevel),
		},
	})
	return newLevel, true, nil
}
