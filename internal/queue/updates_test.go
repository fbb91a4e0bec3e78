package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/queue"
	"github.com/cory-johannsen/taberneiros/internal/storage"
)

type write struct {
	id       string
	patch    character.Patch
	suppress bool
}

type fakeWriter struct {
	mu     sync.Mutex
	writes []write
	fail   map[string]bool
}

func (w *fakeWriter) UpdateCharacter(_ context.Context, id string, patch character.Patch, opts ...storage.WriteOption) (*character.Character, error) {
	var o storage.WriteOptions
	for _, opt := range opts {
		opt(&o)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail[id] {
		return nil, errors.New("store unavailable")
	}
	w.writes = append(w.writes, write{id: id, patch: patch, suppress: o.SuppressRecompute})
	return &character.Character{ID: id}, nil
}

func (w *fakeWriter) snapshot() []write {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]write(nil), w.writes...)
}

func patch(kv map[character.Field]float64) character.Patch {
	var p character.Patch
	for f, v := range kv {
		p.Set(f, v)
	}
	return p
}

func TestUpdates_CoalescesPerCharacter(t *testing.T) {
	w := &fakeWriter{}
	u := queue.NewUpdates(w, 4, zap.NewNop())

	u.Enqueue("c1", patch(map[character.Field]float64{character.PVValue: 5}))
	u.Enqueue("c1", patch(map[character.Field]float64{character.PVValue: 7, character.PMValue: 3}))
	assert.Equal(t, 1, u.Pending())

	require.NoError(t, u.Drain(context.Background()))

	writes := w.snapshot()
	require.Len(t, writes, 1)
	assert.Equal(t, "c1", writes[0].id)
	assert.True(t, writes[0].suppress)
	assert.True(t, writes[0].patch.Equal(patch(map[character.Field]float64{
		character.PVValue: 7, character.PMValue: 3,
	})))
	assert.Equal(t, 0, u.Pending())
}

func TestUpdates_OneWritePerCharacter(t *testing.T) {
	w := &fakeWriter{}
	u := queue.NewUpdates(w, 2, zap.NewNop())
	for _, id := range []string{"a", "b", "a", "c", "b"} {
		u.Enqueue(id, patch(map[character.Field]float64{character.PVMax: 10}))
	}
	require.NoError(t, u.Drain(context.Background()))

	seen := map[string]int{}
	for _, wr := range w.snapshot() {
		seen[wr.id]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)
}

func TestUpdates_EmptyPatchIgnored(t *testing.T) {
	w := &fakeWriter{}
	u := queue.NewUpdates(w, 1, zap.NewNop())
	u.Enqueue("c1", character.Patch{})
	assert.Equal(t, 0, u.Pending())
	require.NoError(t, u.Drain(context.Background()))
	assert.Empty(t, w.snapshot())
}

func TestUpdates_FailureDoesNotStopOthers(t *testing.T) {
	w := &fakeWriter{fail: map[string]bool{"bad": true}}
	u := queue.NewUpdates(w, 1, zap.NewNop())
	u.Enqueue("bad", patch(map[character.Field]float64{character.PVValue: 1}))
	u.Enqueue("good", patch(map[character.Field]float64{character.PVValue: 1}))

	err := u.Drain(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	writes := w.snapshot()
	require.Len(t, writes, 1)
	assert.Equal(t, "good", writes[0].id)
}

func TestUpdates_RunDrainsAfterEnqueue(t *testing.T) {
	w := &fakeWriter{}
	u := queue.NewUpdates(w, 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	u.Enqueue("c1", patch(map[character.Field]float64{character.PMMax: 4}))
	assert.Eventually(t, func() bool { return len(w.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestUpdates_RunDrainsPendingOnShutdown(t *testing.T) {
	w := &fakeWriter{}
	u := queue.NewUpdates(w, 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u.Enqueue("c1", patch(map[character.Field]float64{character.PMMax: 4}))
	assert.ErrorIs(t, u.Run(ctx), context.Canceled)
	assert.Len(t, w.snapshot(), 1)
}

func TestUpdates_DrainEqualsMerge(t *testing.T) {
	fields := []character.Field{character.PVValue, character.PVMax, character.PMValue, character.FisicoValue, character.CargaAtual}
	rapid.Check(t, func(rt *rapid.T) {
		w := &fakeWriter{}
		u := queue.NewUpdates(w, 1, zap.NewNop())
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		var merged character.Patch
		for i := 0; i < n; i++ {
			var p character.Patch
			for _, f := range fields {
				if rapid.Bool().Draw(rt, string(f)+"_set") {
					p.Set(f, float64(rapid.IntRange(0, 30).Draw(rt, string(f))))
				}
			}
			u.Enqueue("c", p)
			merged = merged.Merge(p)
		}
		if err := u.Drain(context.Background()); err != nil {
			rt.Fatal(err)
		}
		writes := w.snapshot()
		if merged.IsEmpty() {
			if len(writes) != 0 {
				rt.Fatalf("expected no writes, got %d", len(writes))
			}
			return
		}
		if len(writes) != 1 || !writes[0].patch.Equal(merged) {
			rt.Fatalf("expected one write equal to the merge")
		}
	})
}

// cancellingWriter cancels the drain context on its first call and then
// fails every write made under a finished context.
type cancellingWriter struct {
	fakeWriter
	cancel context.CancelFunc
}

func (w *cancellingWriter) UpdateCharacter(ctx context.Context, id string, p character.Patch, opts ...storage.WriteOption) (*character.Character, error) {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.fakeWriter.UpdateCharacter(ctx, id, p, opts...)
}

func TestUpdates_CancelledDrainKeepsUnwrittenPatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &cancellingWriter{cancel: cancel}
	u := queue.NewUpdates(w, 1, zap.NewNop())
	u.Enqueue("c1", patch(map[character.Field]float64{character.PVValue: 3}))
	u.Enqueue("c2", patch(map[character.Field]float64{character.PMValue: 4}))

	err := u.Drain(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.snapshot())
	assert.Equal(t, 2, u.Pending())

	u.Enqueue("c1", patch(map[character.Field]float64{character.PVMax: 20}))
	require.NoError(t, u.Drain(context.Background()))

	writes := w.snapshot()
	require.Len(t, writes, 2)
	byID := map[string]character.Patch{}
	for _, wr := range writes {
		byID[wr.id] = wr.patch
	}
	assert.Equal(t, patch(map[character.Field]float64{character.PVValue: 3, character.PVMax: 20}), byID["c1"])
	assert.Equal(t, patch(map[character.Field]float64{character.PMValue: 4}), byID["c2"])
}
