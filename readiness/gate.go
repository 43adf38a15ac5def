package readiness

import (
	"context"
	"sync"
)

// Gate is a re-armable broadcast signal. Waiters block until it is opened; closing
// it again makes later waiters block until the next Open.
type Gate struct {
	mu   sync.Mutex
	open bool
	ch   chan struct{}
}

func New() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Open releases every current and future waiter until the next Close.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return
	}
	g.open = true
	close(g.ch)
}

// Close re-arms the gate.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return
	}
	g.open = false
	g.ch = make(chan struct{})
}

func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Wait blocks until the gate is open or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
