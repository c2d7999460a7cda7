package barrier

import (
	"context"
	"fmt"
	"sync"
)

// Gate is a one-shot release signal. Create instances with [NewGate].
type Gate struct {
	ch   chan struct{}
	once sync.Once
}

// NewGate creates a closed [Gate].
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Open releases every goroutine waiting on the gate, now and in the future.
// Calling Open again has no effect.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.ch) })
}

// IsOpen reports whether [Gate.Open] has been called.
func (g *Gate) IsOpen() bool {
	select {
	case <-g.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the gate opens.
func (g *Gate) Done() <-chan struct{} {
	return g.ch
}

// Await blocks until the gate is open or ctx ends. It returns immediately if
// the gate is already open, even when ctx is done.
func (g *Gate) Await(ctx context.Context) error {
	if g.IsOpen() {
		return nil
	}

	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("await gate: %w", ctx.Err())
	}
}
