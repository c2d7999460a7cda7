package snapshot

import (
	"context"
	"fmt"
	"sync"
)

// Cell is a [Snapshot] guarded by a mutex. The zero value holds the zero T
// and is ready to use.
type Cell[T any] struct {
	val T
	mu  sync.RWMutex
}

// NewCell creates a [Cell] holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{val: initial}
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.val
}

// Replace publishes v.
func (c *Cell[T]) Replace(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.val = v
}

// Compute runs produce without holding the lock and publishes its result.
// The lock is held only for the final swap, so slow work in produce does not
// block readers or other writers. If produce fails or ctx ends first, nothing
// is published.
func (c *Cell[T]) Compute(ctx context.Context, produce func(context.Context) (T, error)) error {
	v, err := produce(ctx)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	c.Replace(v)

	return nil
}
