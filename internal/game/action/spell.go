package action

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Spell difficulty bounds.
const (
	SpellBaseDifficulty = 8
	MinSpellDifficulty  = 5
	MaxSpellDifficulty  = 20
	MaxSpellLevel       = 9
)

// SpellOptions tune a cast.
type SpellOptions struct {
	// Difficulty overrides 8 + spell level when positive.
	Difficulty int
}

var schoolLabels = map[string]string{
	"abjuracao":    "Abjuração",
	"adivinhacao":  "Adivinhação",
	"conjuracao":   "Conjuração",
	"cura":         "Cura",
	"encantamento": "Encantamento",
	"evocacao":     "Evocação",
	"ilusao":       "Ilusão",
	"necromancia":  "Necromancia",
	"transmutacao": "Transmutação",
}

// SpellCost returns the PM cost of spell; zero or unset costs 1.
func SpellCost(spell *character.Item) int {
	if spell.CustoMP <= 0 {
		return 1
	}
	return spell.CustoMP
}

// SpellLevel returns the spell level clamped to [0, MaxSpellLevel]; zero or unset is 1.
func SpellLevel(spell *character.Item) int {
	if spell.Nivel == 0 {
		return 1
	}
	return min(max(spell.Nivel, 0), MaxSpellLevel)
}

// SpellDifficulty returns the casting difficulty for spell.
func SpellDifficulty(spell *character.Item, override int) int {
	d := SpellBaseDifficulty + SpellLevel(spell)
	if override > 0 {
		d = override
	}
	return min(max(d, MinSpellDifficulty), MaxSpellDifficulty)
}

// CastSpell resolves a Mental check to cast the magia item spellID owned by
// actorID, then spends its cost and posts the spell card.
//
// Precondition: the item is a magia owned by the actor.
// Postcondition: on error no dice were rolled and nothing was written;
// a failed PM write after a resolved cast is only reported as a warning.
func (r *Resolver) CastSpell(ctx context.Context, actorID, spellID string, opts SpellOptions) (*check.Result, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	spell, err := r.ownedItem(ctx, actor, spellID, character.Magia, "Item não é uma magia")
	if err != nil {
		return nil, err
	}

	cost := SpellCost(spell)
	current := 0
	if actor.PM != nil {
		current = max(0, actor.PM.Value)
	}
	if current < cost {
		return nil, cdterr.Resourcef("PM insuficiente! Necessário: %d, Atual: %d", cost, current).
			WithMeta("character_id", actor.ID)
	}
	if actor.Attribute(character.Mental) == nil {
		return nil, cdterr.Validation("Personagem não possui atributo Mental válido").
			WithMeta("character_id", actor.ID)
	}

	req := r.request(actor, character.Mental, 0, SpellDifficulty(spell, opts.Difficulty),
		"Conjuração de "+spell.Name,
		r.notice(chat.Info, "Conjuração crítica! Efeito potencializado!"),
		r.notice(chat.Warn, "Falha crítica na conjuração! PM perdido!"),
	)
	res, err := r.checks.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	if r.settings.SpendPMAlways || res.Outcome.IsSuccess() {
		r.spendPM(ctx, actor.ID, cost)
	}
	r.send(ctx, spellCard(actor, spell))
	return res, nil
}

// spendPM subtracts cost from the PM pool as stored after the roll.
func (r *Resolver) spendPM(ctx context.Context, actorID string, cost int) {
	remaining, err := r.writePM(ctx, actorID, cost)
	if err != nil {
		r.logger.Error("spending PM",
			zap.String("character_id", actorID),
			zap.Int("cost", cost),
			zap.Error(err),
		)
		r.notifier.Notify(ctx, chat.Warn, "Erro ao gastar PM, mas magia foi conjurada")
		return
	}
	r.notifier.Notify(ctx, chat.Info, fmt.Sprintf("%d PM gastos. PM restante: %d", cost, remaining))
}

func (r *Resolver) writePM(ctx context.Context, actorID string, cost int) (int, error) {
	fresh, err := r.store.Character(ctx, actorID)
	if err != nil {
		return 0, err
	}
	current := 0
	if fresh.PM != nil {
		current = fresh.PM.Value
	}
	remaining := max(0, current-cost)
	var p character.Patch
	p.SetInt(character.PMValue, remaining)
	if _, err := r.store.UpdateCharacter(ctx, actorID, p, storage.SuppressRecompute()); err != nil {
		return 0, err
	}
	return remaining, nil
}

func spellCard(actor *character.Character, spell *character.Item) chat.Message {
	school := spell.Escola
	if school == "" {
		school = "evocacao"
	}
	if label, ok := schoolLabels[school]; ok {
		school = label
	}
	fields := []chat.Field{
		{Label: "Escola", Value: school},
		{Label: "Nível", Value: strconv.Itoa(SpellLevel(spell))},
		{Label: "Alcance", Value: orDefault(spell.Alcance, "Toque")},
		{Label: "Duração", Value: orDefault(spell.Duracao, "Instantâneo")},
	}
	if spell.Dano != "" {
		fields = append(fields, chat.Field{Label: "Dano", Value: spell.Dano})
	}
	return chat.Message{
		Speaker: actor.Name,
		Flavor:  spell.Name,
		Card: chat.Card{
			Kind:        "spell",
			Title:       spell.Name,
			Fields:      fields,
			Description: orDefault(spell.Descricao, "Sem descrição"),
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
