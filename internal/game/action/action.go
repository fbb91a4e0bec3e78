// Package action composes checks, damage rolls and resource spending into the
// player-facing actions of the ruleset: spells, weapon attacks, skills,
// initiative, potions, rests, equipment and progression.
//
// Every action reads fresh documents from the Store; nothing is cached
// between calls.
package action

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Store is the document access the actions need. *storage.Documents satisfies it.
type Store interface {
	Character(ctx context.Context, id string) (*character.Character, error)
	Item(ctx context.Context, id string) (*character.Item, error)
	Items(ctx context.Context, ownerID string) ([]*character.Item, error)
	UpdateCharacter(ctx context.Context, id string, patch character.Patch, opts ...storage.WriteOption) (*character.Character, error)
	CreateItem(ctx context.Context, item *character.Item, opts ...storage.WriteOption) error
	UpdateItem(ctx context.Context, id string, patch character.ItemPatch, opts ...storage.WriteOption) (*character.Item, error)
	DeleteItem(ctx context.Context, id string, opts ...storage.WriteOption) error
}

// Settings are the table-wide switches the actions honor.
type Settings struct {
	// SpendPMAlways spends a spell's cost on every resolved cast; otherwise
	// only on success or critical success.
	SpendPMAlways bool
}

// DefaultSettings returns the settings of a fresh table.
func DefaultSettings() Settings {
	return Settings{SpendPMAlways: true}
}

// Scripts are extra critical-outcome callbacks run after the built-in ones.
type Scripts struct {
	OnCriticalSuccess check.Callback
	OnCriticalFailure check.Callback
}

// Resolver runs actions.
type Resolver struct {
	store     Store
	checks    *check.Resolver
	roller    *dice.Roller
	sink      chat.Sink
	notifier  chat.Notifier
	confirmer chat.Confirmer
	settings  Settings
	logger    *zap.Logger

	// Scripts may be set after construction.
	Scripts Scripts
}

// NewResolver creates a Resolver.
//
// Precondition: every argument must be non-nil.
// Postcondition: Returns a non-nil Resolver with no scripted callbacks.
func NewResolver(
	store Store,
	checks *check.Resolver,
	roller *dice.Roller,
	sink chat.Sink,
	notifier chat.Notifier,
	confirmer chat.Confirmer,
	settings Settings,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		store:     store,
		checks:    checks,
		roller:    roller,
		sink:      sink,
		notifier:  notifier,
		confirmer: confirmer,
		settings:  settings,
		logger:    logger,
	}
}

// Check runs a plain attribute check for the stored character actorID,
// with the scripted callbacks attached.
func (r *Resolver) Check(ctx context.Context, actorID string, attr character.AttributeName, bonus, difficulty int, flavor string) (*check.Result, error) {
	actor, err := r.store.Character(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return r.checks.Resolve(ctx, r.request(actor, attr, bonus, difficulty, flavor, nil, nil))
}

// request builds a check request whose callbacks run the built-in reaction
// and then the scripted one.
func (r *Resolver) request(actor *character.Character, attr character.AttributeName, bonus, difficulty int, flavor string, onSuccess, onFailure check.Callback) check.Request {
	return check.Request{
		Actor:             actor,
		Attribute:         attr,
		Bonus:             bonus,
		Difficulty:        difficulty,
		Flavor:            flavor,
		OnCriticalSuccess: chain(onSuccess, r.Scripts.OnCriticalSuccess),
		OnCriticalFailure: chain(onFailure, r.Scripts.OnCriticalFailure),
	}
}

// notice returns a callback that only posts text at level.
func (r *Resolver) notice(level chat.Level, text string) check.Callback {
	return func(ctx context.Context, _ *character.Character, _ check.Result) error {
		r.notifier.Notify(ctx, level, text)
		return nil
	}
}

// chain runs every non-nil callback in order and returns the first error.
// It returns nil when no callback is set.
func chain(cbs ...check.Callback) check.Callback {
	var set []check.Callback
	for _, cb := range cbs {
		if cb != nil {
			set = append(set, cb)
		}
	}
	switch len(set) {
	case 0:
		return nil
	case 1:
		return set[0]
	}
	return func(ctx context.Context, actor *character.Character, res check.Result) error {
		var first error
		for _, cb := range set {
			if err := cb(ctx, actor, res); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}

// ownedItem loads the item id and checks that it belongs to actor and is of
// type want.
func (r *Resolver) ownedItem(ctx context.Context, actor *character.Character, id string, want character.ItemType, wrongType string) (*character.Item, error) {
	item, err := r.store.Item(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actor.ID {
		return nil, cdterr.Validationf("%s não pertence a %s", item.Name, actor.Name).
			WithMeta("item_id", item.ID)
	}
	if want != "" && item.Type != want {
		return nil, cdterr.Validation(wrongType).WithMeta("item_id", item.ID)
	}
	return item, nil
}

// send posts msg, logging a failed delivery.
func (r *Resolver) send(ctx context.Context, msg chat.Message) {
	if err := r.sink.Send(ctx, msg); err != nil {
		r.logger.Warn("posting chat card", zap.String("kind", msg.Card.Kind), zap.Error(err))
	}
}
