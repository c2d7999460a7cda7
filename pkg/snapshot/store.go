package snapshot

import (
	"fmt"
	"sync/atomic"
)

var (
	_ Snapshot[any] = (*Store[any])(nil)
	_ Snapshot[any] = (*Cell[any])(nil)
)

// Snapshot is a reference to an immutable value that is replaced as a whole.
type Snapshot[T any] interface {
	Load() T
	Replace(v T)
}

// Store is a lock-free [Snapshot] backed by [atomic.Pointer]. Create
// instances with [NewStore].
type Store[T any] struct {
	ptr atomic.Pointer[T]
}

// NewStore creates a [Store] holding initial.
func NewStore[T any](initial T) *Store[T] {
	s := &Store[T]{}
	s.ptr.Store(&initial)

	return s
}

// Load returns the current value.
func (s *Store[T]) Load() T {
	if p := s.ptr.Load(); p != nil {
		return *p
	}

	var zero T

	return zero
}

// Replace publishes v.
func (s *Store[T]) Replace(v T) {
	s.ptr.Store(&v)
}

// Swap publishes v and returns the value it replaced.
func (s *Store[T]) Swap(v T) T {
	if old := s.ptr.Swap(&v); old != nil {
		return *old
	}

	var zero T

	return zero
}

// Update derives a new value from the current one and publishes it.
//
// If another writer publishes between the load and the swap, fn is called
// again with the newer value. If fn returns an error, nothing is published.
func (s *Store[T]) Update(fn func(current T) (T, error)) error {
	for {
		old := s.ptr.Load()

		var cur T
		if old != nil {
			cur = *old
		}

		next, err := fn(cur)
		if err != nil {
			return fmt.Errorf("update: %w", err)
		}

		if s.ptr.CompareAndSwap(old, &next) {
			return nil
		}
	}
}
