package dbclient

import (
	"context"
	"sync"
)

// Gate is a FIFO mutual-exclusion lock whose acquisition can be abandoned
// through a context. Ownership is handed directly to the next waiter on
// Release, so waiters are served strictly in arrival order.
type Gate struct {
	mu      sync.Mutex
	held    bool
	waiters []chan struct{}
}

func NewGate() *Gate {
	return &Gate{}
}

// Acquire blocks until the gate is owned by the caller or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	if !g.held && len(g.waiters) == 0 {
		g.held = true
		g.mu.Unlock()
		return nil
	}
	ready := make(chan struct{})
	g.waiters = append(g.waiters, ready)
	g.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		for i, w := range g.waiters {
			if w == ready {
				g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
				g.mu.Unlock()
				return ctx.Err()
			}
		}
		g.mu.Unlock()
		// Ownership was handed over while ctx fired; pass it on.
		g.Release()
		return ctx.Err()
	}
}

// Release hands the gate to the oldest waiter or unlocks it.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.held {
		panic("dbclient: release of unheld gate")
	}
	if len(g.waiters) == 0 {
		g.held = false
		return
	}
	next := g.waiters[0]
	g.waiters = g.waiters[1:]
	close(next)
}

// Waiting reports how many callers are queued behind the current owner.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}
