// Package hooks turns document events into derived-stat recomputation.
package hooks

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
	"github.com/cory-johannsen/taberneiros/internal/queue"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Reader loads fresh documents.
type Reader interface {
	Character(ctx context.Context, id string) (*character.Character, error)
	Items(ctx context.Context, ownerID string) ([]*character.Item, error)
}

// Dispatcher implements storage.Listener. Character writes enqueue a
// derived-stat patch; item writes schedule a debounced equipment pass for
// the owner.
//
// Invariant: events tagged SuppressRecompute never enqueue anything.
type Dispatcher struct {
	reader  Reader
	updates *queue.Updates
	items   *queue.Debouncer
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: reader, updates and logger must be non-nil; debounce > 0.
func NewDispatcher(reader Reader, updates *queue.Updates, debounce time.Duration, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{reader: reader, updates: updates, logger: logger}
	d.items = queue.NewDebouncer(debounce, d.recomputeEquipment)
	return d
}

// CharacterCreated enqueues the full derived patch, synthesizing missing groups.
func (d *Dispatcher) CharacterCreated(_ context.Context, ev storage.CharacterEvent) {
	if ev.Options.SuppressRecompute {
		return
	}
	d.enqueue(ev.Character.ID, rules.ComputeDerivedPatch(ev.Character, nil), "created")
}

// CharacterUpdated enqueues the derived fields affected by the change.
func (d *Dispatcher) CharacterUpdated(_ context.Context, ev storage.CharacterEvent) {
	if ev.Options.SuppressRecompute {
		return
	}
	changed := ev.Changed
	if changed == nil {
		changed = character.NewFieldSet()
	}
	d.enqueue(ev.Character.ID, rules.ComputeDerivedPatch(ev.Character, changed), "updated")
}

// ItemCreated schedules an equipment pass for the owner.
func (d *Dispatcher) ItemCreated(_ context.Context, ev storage.ItemEvent) {
	d.touch(ev)
}

// ItemUpdated schedules an equipment pass when a field that feeds defense
// or load changed.
func (d *Dispatcher) ItemUpdated(_ context.Context, ev storage.ItemEvent) {
	relevant := slices.ContainsFunc(ev.Changed, func(f character.ItemField) bool {
		return slices.Contains(character.EquipmentRelevantFields, f)
	})
	if !relevant {
		return
	}
	d.touch(ev)
}

// ItemDeleted schedules an equipment pass for the former owner.
func (d *Dispatcher) ItemDeleted(_ context.Context, ev storage.ItemEvent) {
	d.touch(ev)
}

// Flush runs every pending equipment pass now.
func (d *Dispatcher) Flush() {
	d.items.Flush()
}

// Stop cancels pending equipment passes.
func (d *Dispatcher) Stop() {
	d.items.Stop()
}

func (d *Dispatcher) touch(ev storage.ItemEvent) {
	if ev.Options.SkipOwnerRecompute || ev.Options.SuppressRecompute || ev.Item.OwnerID == "" {
		return
	}
	d.items.Touch(ev.Item.OwnerID)
}

func (d *Dispatcher) recomputeEquipment(ownerID string) {
	ctx := context.Background()
	c, err := d.reader.Character(ctx, ownerID)
	if err != nil {
		d.logger.Warn("equipment recompute: loading owner", zap.String("character_id", ownerID), zap.Error(err))
		return
	}
	items, err := d.reader.Items(ctx, ownerID)
	if err != nil {
		d.logger.Warn("equipment recompute: loading items", zap.String("character_id", ownerID), zap.Error(err))
		return
	}
	d.enqueue(ownerID, rules.ComputeEquipmentPatch(c, items), "equipment")
}

func (d *Dispatcher) enqueue(id string, p character.Patch, reason string) {
	if p.IsEmpty() {
		return
	}
	d.logger.Debug("derived patch queued",
		zap.String("character_id", id),
		zap.String("reason", reason),
		zap.Any("patch", p),
	)
	d.updates.Enqueue(id, p)
}

var _ storage.Listener = (*Dispatcher)(nil)
