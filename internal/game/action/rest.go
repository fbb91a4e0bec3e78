package action

import (
	"context"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

// QuickRest restores half of max PV and PM after confirmation.
//
// Postcondition: returns false with a nil error when the user declines.
func (r *Resolver) QuickRest(ctx context.Context, actorID string) (bool, error) {
	return r.rest(ctx, actorID, "Descanso Rápido", "Recuperar metade dos PV e PM?",
		"Descanso rápido realizado!", rules.QuickRestPatch)
}

// LongRest restores PV and PM to max after confirmation.
//
// Postcondition: returns false with a nil error when the user declines.
func (r *Resolver) LongRest(ctx context.Context, actorID string) (bool, error) {
	return r.rest(ctx, actorID, "Descanso Longo", "Recuperar todos os PV e PM?",
		"Descanso longo realizado!", rules.LongRestPatch)
}

func (r *Resolver) rest(ctx context.Context, actorID, title, question, done string, patch func(*character.Character) character.Patch) (bool, error) {
	if _, err := r.store.Character(ctx, actorID); err != nil {
		return false, err
	}
	ok, err := r.confirmer.Confirm(ctx, title, question)
	if err != nil || !ok {
		return false, err
	}
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return false, err
	}
	if p := patch(actor); !p.IsEmpty() {
		if _, err := r.store.UpdateCharacter(ctx, actorID, p); err != nil {
			return false, err
		}
	}
	r.notifier.Notify(ctx, chat.Info, done)
	return true, nil
}
