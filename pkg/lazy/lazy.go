package lazy

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	_ Provider[any] = (*Value[any])(nil)
	_ Provider[any] = (*Holder[any])(nil)
	_ Provider[any] = (*Unsafe[any])(nil)
)

// Provider returns a shared value, constructing it on first use.
type Provider[T any] interface {
	Get() (T, error)
}

// Constructor builds the shared value.
type Constructor[T any] func() (T, error)

// Value is a lazily constructed value using check-lock-check. Create
// instances with [New].
//
// A failed construction publishes nothing, so a later Get tries again.
type Value[T any] struct {
	construct Constructor[T]
	ptr       atomic.Pointer[T]
	mu        sync.Mutex
}

// New creates a [Value] built by construct on first use.
func New[T any](construct Constructor[T]) *Value[T] {
	return &Value[T]{construct: construct}
}

// Get returns the shared value, constructing it if no call has succeeded yet.
func (v *Value[T]) Get() (T, error) {
	if p := v.ptr.Load(); p != nil {
		return *p, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Another goroutine may have published while this one waited for the lock.
	if p := v.ptr.Load(); p != nil {
		return *p, nil
	}

	val, err := v.construct()
	if err != nil {
		var zero T

		return zero, fmt.Errorf("construct: %w", err)
	}

	v.ptr.Store(&val)

	return val, nil
}

// Loaded reports whether the value has been constructed.
func (v *Value[T]) Loaded() bool {
	return v.ptr.Load() != nil
}

// Holder is a lazily constructed value backed by [sync.OnceValues]. Create
// instances with [NewHolder].
//
// The constructor runs once; its result, including any error, is returned to
// every caller from then on.
type Holder[T any] struct {
	get func() (T, error)
}

// NewHolder creates a [Holder] built by construct on first use.
func NewHolder[T any](construct Constructor[T]) *Holder[T] {
	return &Holder[T]{get: sync.OnceValues(construct)}
}

// Get returns the shared value, constructing it on the first call.
func (h *Holder[T]) Get() (T, error) {
	val, err := h.get()
	if err != nil {
		return val, fmt.Errorf("construct: %w", err)
	}

	return val, nil
}

// Unsafe is a lazily constructed value with no guard between the check and
// the construction. Concurrent first calls may each run the constructor and
// return different instances. Create instances with [NewUnsafe].
type Unsafe[T any] struct {
	construct Constructor[T]
	ptr       atomic.Pointer[T]
}

// NewUnsafe creates an [Unsafe] value built by construct.
func NewUnsafe[T any](construct Constructor[T]) *Unsafe[T] {
	return &Unsafe[T]{construct: construct}
}

// Get returns the value, constructing it whenever none is published yet.
func (u *Unsafe[T]) Get() (T, error) {
	if p := u.ptr.Load(); p != nil {
		return *p, nil
	}

	val, err := u.construct()
	if err != nil {
		var zero T

		return zero, fmt.Errorf("construct: %w", err)
	}

	u.ptr.Store(&val)

	return val, nil
}
