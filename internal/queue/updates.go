// Package queue coalesces derived-stat writes. Updates batches patches per
// character into one suppress-recompute write; Debouncer collapses bursts
// of item events per owner into one recomputation pass.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

// Writer applies a patch to a stored character.
type Writer interface {
	UpdateCharacter(ctx context.Context, id string, patch character.Patch, opts ...storage.WriteOption) (*character.Character, error)
}

// Updates is the update coalescing queue.
//
// Invariant: at most one pending patch exists per character; it is the
// merge of every patch enqueued for that character since the last drain.
type Updates struct {
	writer      Writer
	logger      *zap.Logger
	concurrency int

	mu      sync.Mutex
	pending map[string]character.Patch
	order   []string

	wake chan struct{}
}

// NewUpdates creates an empty queue writing through w.
//
// Precondition: w and logger must be non-nil; concurrency < 1 means 1.
func NewUpdates(w Writer, concurrency int, logger *zap.Logger) *Updates {
	return &Updates{
		writer:      w,
		logger:      logger,
		concurrency: max(concurrency, 1),
		pending:     make(map[string]character.Patch),
		wake:        make(chan struct{}, 1),
	}
}

// Enqueue merges patch into the pending patch for id. Later leaves win.
// Empty patches are ignored.
func (u *Updates) Enqueue(id string, patch character.Patch) {
	if patch.IsEmpty() {
		return
	}
	u.mu.Lock()
	prev, ok := u.pending[id]
	if !ok {
		u.order = append(u.order, id)
	}
	u.pending[id] = prev.Merge(patch)
	u.mu.Unlock()

	select {
	case u.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of characters with a queued patch.
func (u *Updates) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Drain applies every pending patch, one write per character, each tagged
// with storage.SuppressRecompute. Writes for different characters run
// concurrently up to the configured limit.
//
// Postcondition: the queue holds only patches enqueued after Drain began,
// plus patches whose write failed because ctx ended; those are merged back
// under any newer patch for the same character. Every failed write is logged
// and reported in the joined error; it does not stop the others.
func (u *Updates) Drain(ctx context.Context) error {
	u.mu.Lock()
	batch := u.pending
	order := u.order
	u.pending = make(map[string]character.Patch)
	u.order = nil
	u.mu.Unlock()

	if len(order) == 0 {
		return nil
	}

	var (
		errMu sync.Mutex
		errs  []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for _, id := range order {
		patch := batch[id]
		g.Go(func() error {
			if _, err := u.writer.UpdateCharacter(gctx, id, patch, storage.SuppressRecompute()); err != nil {
				u.logger.Warn("applying queued patch",
					zap.String("character_id", id),
					zap.Any("patch", patch),
					zap.Error(err),
				)
				if ctx.Err() != nil {
					u.requeue(id, patch)
				}
				errMu.Lock()
				errs = append(errs, fmt.Errorf("character %s: %w", id, err))
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	u.logger.Debug("queue drained", zap.Int("characters", len(order)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// requeue puts back an unwritten patch. Leaves enqueued since win.
func (u *Updates) requeue(id string, patch character.Patch) {
	u.mu.Lock()
	defer u.mu.Unlock()
	newer, ok := u.pending[id]
	if !ok {
		u.order = append(u.order, id)
	}
	u.pending[id] = patch.Merge(newer)
}

// Run drains the queue on the first scheduling opportunity after each
// enqueue until ctx is cancelled. Pending patches are drained once more
// before returning.
func (u *Updates) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = u.Drain(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-u.wake:
			_ = u.Drain(ctx)
		}
	}
}
