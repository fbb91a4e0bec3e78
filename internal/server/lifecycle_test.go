package server_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/taberneiros/internal/server"
)

type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	onStop  func()
}

func (b *blockingService) Start(ctx context.Context) error {
	b.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func (b *blockingService) Stop() {
	b.stopped.Store(true)
	if b.onStop != nil {
		b.onStop()
	}
}

func TestLifecycle_RunsUntilContextCancelled(t *testing.T) {
	lc := server.NewLifecycle(zaptest.NewLogger(t))
	svc1, svc2 := &blockingService{}, &blockingService{}
	lc.Add("first", svc1)
	lc.Add("second", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	assert.Eventually(t, func() bool { return svc1.started.Load() && svc2.started.Load() },
		time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("lifecycle did not stop")
	}
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycle_StopsInReverseOrder(t *testing.T) {
	lc := server.NewLifecycle(zaptest.NewLogger(t))
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	lc.Add("a", &blockingService{onStop: record("a")})
	lc.Add("b", &blockingService{onStop: record("b")})
	lc.Add("c", &blockingService{onStop: record("c")})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, lc.Run(ctx))
	assert.Equal(t, []string{"c", "b", "a"}, order)
}

func TestLifecycle_ServiceFailureStopsOthers(t *testing.T) {
	lc := server.NewLifecycle(zaptest.NewLogger(t))
	healthy := &blockingService{}
	lc.Add("healthy", healthy)
	lc.Add("broken", server.FuncService{
		StartFn: func(context.Context) error { return errors.New("boom") },
	})

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service broken: boom")
	assert.True(t, healthy.stopped.Load())
}

func TestFuncService_NilStopIsNoop(t *testing.T) {
	svc := server.FuncService{StartFn: func(context.Context) error { return nil }}
	assert.NotPanics(t, svc.Stop)
	assert.NoError(t, svc.Start(context.Background()))
}

func TestLifecycle_DeadlineIsCleanStop(t *testing.T) {
	lc := server.NewLifecycle(zaptest.NewLogger(t))
	lc.Add("wrapping", server.FuncService{
		StartFn: func(ctx context.Context) error {
			<-ctx.Done()
			return fmt.Errorf("draining: %w", ctx.Err())
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, lc.Run(ctx))
}

func TestLifecycle_ForeignDeadlineIsFailure(t *testing.T) {
	lc := server.NewLifecycle(zaptest.NewLogger(t))
	lc.Add("timeout", server.FuncService{
		StartFn: func(context.Context) error { return context.DeadlineExceeded },
	})

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
