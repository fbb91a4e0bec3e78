// Package system is the public surface of the rules engine. Every method
// catches its errors: they are logged, reported to the notifier exactly
// once, and the method returns nil or false.
package system

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/action"
	"github.com/cory-johannsen/taberneiros/internal/game/catalog"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

// Characters reads and creates character documents.
type Characters interface {
	Character(ctx context.Context, id string) (*character.Character, error)
	CreateCharacter(ctx context.Context, c *character.Character) error
}

// System wires the action resolvers to the user-facing error policy.
type System struct {
	characters Characters
	actions    *action.Resolver
	catalog    *catalog.Registry
	notifier   chat.Notifier
	logger     *zap.Logger
}

// New creates a System. items may be nil when no catalog is loaded.
//
// Precondition: characters, actions, notifier and logger must be non-nil.
func New(characters Characters, actions *action.Resolver, items *catalog.Registry, notifier chat.Notifier, logger *zap.Logger) *System {
	return &System{
		characters: characters,
		actions:    actions,
		catalog:    items,
		notifier:   notifier,
		logger:     logger,
	}
}

// fail logs err and notifies the user once. Validation and resource errors
// carry user-facing text and are shown as is; anything else is prefixed
// with what failed.
func (s *System) fail(ctx context.Context, op, what string, err error) {
	s.logger.Error("operation failed",
		zap.String("op", op),
		zap.String("code", string(cdterr.CodeOf(err))),
		zap.Error(err),
	)
	level, text := chat.Error, what+": "+err.Error()
	var e *cdterr.Error
	if errors.As(err, &e) {
		switch e.Code {
		case cdterr.CodeResource:
			level, text = chat.Warn, e.Message
		case cdterr.CodeValidation:
			text = e.Message
		}
	}
	s.notifier.Notify(ctx, level, text)
}

// RollTest resolves a check of attribute for actorID.
func (s *System) RollTest(ctx context.Context, actorID, attribute string, skillBonus, difficulty int, flavor string) *check.Result {
	res, err := s.actions.Check(ctx, actorID, character.AttributeName(attribute), skillBonus, difficulty, flavor)
	if err != nil {
		s.fail(ctx, "roll_test", "Erro ao realizar rolagem", err)
		return nil
	}
	return res
}

// RollDamage rolls a damage formula for actorID.
func (s *System) RollDamage(ctx context.Context, actorID, formula string, opts action.DamageOptions) *dice.Result {
	res, err := s.actions.RollDamageFor(ctx, actorID, formula, opts)
	if err != nil {
		s.fail(ctx, "roll_damage", "Erro ao rolar dano", err)
		return nil
	}
	return res
}

// RollSpell casts spellID for actorID.
func (s *System) RollSpell(ctx context.Context, actorID, spellID string, opts action.SpellOptions) *check.Result {
	res, err := s.actions.CastSpell(ctx, actorID, spellID, opts)
	if err != nil {
		s.fail(ctx, "roll_spell", "Erro ao conjurar magia", err)
		return nil
	}
	return res
}

// RollWeapon attacks with weaponID for actorID.
func (s *System) RollWeapon(ctx context.Context, actorID, weaponID string, opts action.AttackOptions) *action.AttackResult {
	res, err := s.actions.Attack(ctx, actorID, weaponID, opts)
	if err != nil {
		s.fail(ctx, "roll_weapon", "Erro ao atacar", err)
		return nil
	}
	return res
}

// RollSkill rolls the habilidade item skillID for actorID.
func (s *System) RollSkill(ctx context.Context, actorID, skillID string, difficulty int) *check.Result {
	res, err := s.actions.RollSkill(ctx, actorID, skillID, difficulty)
	if err != nil {
		s.fail(ctx, "roll_skill", "Erro ao rolar habilidade", err)
		return nil
	}
	return res
}

// RollInitiative rolls initiative for actorID.
func (s *System) RollInitiative(ctx context.Context, actorID string) *dice.Result {
	res, err := s.actions.RollInitiative(ctx, actorID)
	if err != nil {
		s.fail(ctx, "roll_initiative", "Erro ao rolar iniciativa", err)
		return nil
	}
	return res
}

// UseItem uses itemID according to its type.
func (s *System) UseItem(ctx context.Context, actorID, itemID string, opts action.UseOptions) *action.UseResult {
	res, err := s.actions.UseItem(ctx, actorID, itemID, opts)
	if err != nil {
		s.fail(ctx, "use_item", "Erro ao usar item", err)
		return nil
	}
	return res
}

// UsePotion drinks potionID. Returns nil when declined.
func (s *System) UsePotion(ctx context.Context, actorID, potionID string) *dice.Result {
	res, err := s.actions.UsePotion(ctx, actorID, potionID)
	if err != nil {
		s.fail(ctx, "use_potion", "Erro ao usar poção", err)
		return nil
	}
	return res
}

// QuickRest restores half of PV and PM. Returns false when declined.
func (s *System) QuickRest(ctx context.Context, actorID string) bool {
	ok, err := s.actions.QuickRest(ctx, actorID)
	if err != nil {
		s.fail(ctx, "quick_rest", "Erro no descanso", err)
		return false
	}
	return ok
}

// LongRest restores PV and PM fully. Returns false when declined.
func (s *System) LongRest(ctx context.Context, actorID string) bool {
	ok, err := s.actions.LongRest(ctx, actorID)
	if err != nil {
		s.fail(ctx, "long_rest", "Erro no descanso", err)
		return false
	}
	return ok
}

// ToggleEquip equips or unequips itemID.
func (s *System) ToggleEquip(ctx context.Context, actorID, itemID string) *character.Item {
	item, err := s.actions.ToggleEquip(ctx, actorID, itemID)
	if err != nil {
		s.fail(ctx, "toggle_equip", "Erro ao equipar item", err)
		return nil
	}
	return item
}

// AddItem gives a copy of item to actorID. Returns nil when declined.
func (s *System) AddItem(ctx context.Context, actorID string, item *character.Item) *character.Item {
	owned, err := s.actions.AddItem(ctx, actorID, item)
	if err != nil {
		s.fail(ctx, "add_item", "Erro ao adicionar item", err)
		return nil
	}
	return owned
}

// AddCatalogItem gives actorID a fresh copy of the catalog entry entryID.
func (s *System) AddCatalogItem(ctx context.Context, actorID, entryID string) *character.Item {
	var entry *catalog.Entry
	if s.catalog != nil {
		entry, _ = s.catalog.Get(entryID)
	}
	if entry == nil {
		s.fail(ctx, "add_item", "Erro ao adicionar item",
			cdterr.Validationf("Item %q não encontrado no catálogo", entryID))
		return nil
	}
	return s.AddItem(ctx, actorID, entry.Instantiate(actorID))
}

// CreateCharacter stores a new character; missing groups are synthesized
// by the derived-stat hooks.
func (s *System) CreateCharacter(ctx context.Context, name, classe string, attrs map[character.AttributeName]int) *character.Character {
	c, err := character.Build("", name, classe, attrs)
	if err != nil {
		s.fail(ctx, "create_character", "Erro ao criar personagem", cdterr.WrapWithCode(err, cdterr.CodeValidation, err.Error()))
		return nil
	}
	if err := s.characters.CreateCharacter(ctx, c); err != nil {
		s.fail(ctx, "create_character", "Erro ao criar personagem", err)
		return nil
	}
	return c
}

// Character returns the stored character id.
func (s *System) Character(ctx context.Context, id string) *character.Character {
	c, err := s.characters.Character(ctx, id)
	if err != nil {
		s.fail(ctx, "character", "Erro ao ler personagem", err)
		return nil
	}
	return c
}

// CalculateXPForLevel returns the XP needed to leave level.
func (s *System) CalculateXPForLevel(level int) int {
	return rules.XPForLevel(level)
}

// GetAttributeModifier returns floor((value-4)/2).
func (s *System) GetAttributeModifier(value int) int {
	return rules.Modifier(value)
}

// CanLevelUp reports whether actorID has enough XP for the next level.
func (s *System) CanLevelUp(ctx context.Context, actorID string) bool {
	c, err := s.characters.Character(ctx, actorID)
	if err != nil {
		s.fail(ctx, "can_level_up", "Erro ao verificar nível", err)
		return false
	}
	return rules.CanLevelUp(c)
}

// LevelUp advances actorID one level when possible.
func (s *System) LevelUp(ctx context.Context, actorID string) bool {
	_, ok, err := s.actions.LevelUp(ctx, actorID)
	if err != nil {
		s.fail(ctx, "level_up", "Erro ao subir de nível", err)
		return false
	}
	return ok
}
