package dbclient_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
)

func waitForWaiters(t *testing.T, g *dbclient.Gate, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return g.Waiting() == n }, time.Second, time.Millisecond)
}

func TestGate_FIFO(t *testing.T) {
	g := dbclient.NewGate()
	ctx := context.Background()
	require.NoError(t, g.Acquire(ctx))

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := g.Acquire(ctx); err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			g.Release()
		}(i)
		// Each waiter is queued before the next one starts.
		waitForWaiters(t, g, i+1)
	}

	g.Release()
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestGate_AbandonedWaiterLeavesQueue(t *testing.T) {
	g := dbclient.NewGate()
	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- g.Acquire(ctx) }()
	waitForWaiters(t, g, 1)

	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, 0, g.Waiting())

	g.Release()
	// The gate is free again.
	require.NoError(t, g.Acquire(context.Background()))
	g.Release()
}

func TestGate_AcquireTimesOut(t *testing.T) {
	g := dbclient.NewGate()
	require.NoError(t, g.Acquire(context.Background()))
	defer g.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, g.Acquire(ctx), context.DeadlineExceeded)
}

func TestGate_ReleaseUnheldPanics(t *testing.T) {
	g := dbclient.NewGate()
	assert.Panics(t, g.Release)
}
