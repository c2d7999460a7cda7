package buffer

import (
	"context"
	"fmt"
	"sync"

	"github.com/eapache/queue"

	"github.com/MacroPower/synclab/pkg/syncerrors"
	"github.com/MacroPower/synclab/pkg/syncmetrics"
)

// State describes how full a buffer is.
type State int

const (
	Empty State = iota
	Partial
	Full
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Partial:
		return "partial"
	case Full:
		return "full"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

const (
	condNotFull  = "not_full"
	condNotEmpty = "not_empty"
)

// Option configures a [Bounded] buffer.
type Option func(*options)

type options struct {
	metrics *syncmetrics.Metrics
	name    string
}

// WithMetrics records operations, waits and the buffer size under name.
func WithMetrics(m *syncmetrics.Metrics, name string) Option {
	return func(o *options) {
		o.metrics = m
		o.name = name
	}
}

// Bounded is a fixed-capacity FIFO buffer that is safe for concurrent use.
// Create instances with [New].
type Bounded[T any] struct {
	opts     options
	items    *queue.Queue
	notFull  signal
	notEmpty signal
	capacity int
	mu       sync.Mutex
	closed   bool
}

// New creates a [Bounded] buffer holding at most capacity items.
func New[T any](capacity int, opts ...Option) (*Bounded[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1, got %d",
			syncerrors.ErrInvalidArgument, capacity)
	}

	b := &Bounded[T]{
		items:    queue.New(),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(&b.opts)
	}

	return b, nil
}

// Put appends item, blocking while the buffer is full.
//
// It returns an error wrapping ctx.Err() if ctx ends while waiting, or
// [syncerrors.ErrClosed] if the buffer is closed. In both cases item was not
// added.
func (b *Bounded[T]) Put(ctx context.Context, item T) error {
	waits := 0

	b.mu.Lock()
	for b.items.Length() == b.capacity && !b.closed {
		ch := b.notFull.wait()
		b.mu.Unlock()
		waits++

		select {
		case <-ch:
		case <-ctx.Done():
			b.recordWaits(condNotFull, waits)

			return fmt.Errorf("put: %w", ctx.Err())
		}

		b.mu.Lock()
	}

	if b.closed {
		b.mu.Unlock()
		b.recordWaits(condNotFull, waits)

		return fmt.Errorf("put: %w", syncerrors.ErrClosed)
	}

	size := b.push(item)
	b.mu.Unlock()

	b.recordWaits(condNotFull, waits)
	b.recordOperation("put", size)

	return nil
}

// Take removes and returns the oldest item, blocking while the buffer is
// empty.
//
// It returns an error wrapping ctx.Err() if ctx ends while waiting. After
// [Bounded.Close], Take keeps returning the remaining items and then
// [syncerrors.ErrClosed].
func (b *Bounded[T]) Take(ctx context.Context) (T, error) {
	var zero T

	waits := 0

	b.mu.Lock()
	for b.items.Length() == 0 && !b.closed {
		ch := b.notEmpty.wait()
		b.mu.Unlock()
		waits++

		select {
		case <-ch:
		case <-ctx.Done():
			b.recordWaits(condNotEmpty, waits)

			return zero, fmt.Errorf("take: %w", ctx.Err())
		}

		b.mu.Lock()
	}

	if b.items.Length() == 0 {
		b.mu.Unlock()
		b.recordWaits(condNotEmpty, waits)

		return zero, fmt.Errorf("take: %w", syncerrors.ErrClosed)
	}

	item, size := b.pop()
	b.mu.Unlock()

	b.recordWaits(condNotEmpty, waits)
	b.recordOperation("take", size)

	return item, nil
}

// TryPut appends item if there is space, without blocking. It reports whether
// item was added.
func (b *Bounded[T]) TryPut(item T) bool {
	b.mu.Lock()
	if b.closed || b.items.Length() == b.capacity {
		b.mu.Unlock()

		return false
	}

	size := b.push(item)
	b.mu.Unlock()

	b.recordOperation("put", size)

	return true
}

// TryTake removes the oldest item if there is one, without blocking.
func (b *Bounded[T]) TryTake() (T, bool) {
	b.mu.Lock()
	if b.items.Length() == 0 {
		b.mu.Unlock()

		var zero T

		return zero, false
	}

	item, size := b.pop()
	b.mu.Unlock()

	b.recordOperation("take", size)

	return item, true
}

// Close wakes all waiters. Subsequent puts fail; takes drain what is left.
// Close is idempotent.
func (b *Bounded[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	b.notFull.broadcast()
	b.notEmpty.broadcast()
}

// Len returns the number of buffered items.
func (b *Bounded[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.items.Length()
}

// Cap returns the buffer capacity.
func (b *Bounded[T]) Cap() int {
	return b.capacity
}

// State returns whether the buffer is empty, partially filled or full.
func (b *Bounded[T]) State() State {
	switch n := b.Len(); n {
	case 0:
		return Empty
	case b.capacity:
		return Full
	default:
		return Partial
	}
}

// push must be called with b.mu held and space available.
func (b *Bounded[T]) push(item T) int {
	b.items.Add(item)
	size := b.checkSize()
	b.notEmpty.broadcast()

	return size
}

// pop must be called with b.mu held and at least one item buffered.
func (b *Bounded[T]) pop() (T, int) {
	// A nil interface value comes back as the zero T.
	item, _ := b.items.Remove().(T)
	size := b.checkSize()
	b.notFull.broadcast()

	return item, size
}

func (b *Bounded[T]) checkSize() int {
	n := b.items.Length()
	if n < 0 || n > b.capacity {
		panic(fmt.Errorf("%w: buffer size %d outside [0, %d]", syncerrors.ErrInvariant, n, b.capacity))
	}

	return n
}

func (b *Bounded[T]) recordOperation(op string, size int) {
	if b.opts.metrics == nil {
		return
	}

	b.opts.metrics.RecordBufferOperation(b.opts.name, op, size)
}

func (b *Bounded[T]) recordWaits(cond string, waits int) {
	if b.opts.metrics == nil {
		return
	}

	for range waits {
		b.opts.metrics.RecordBufferWait(b.opts.name, cond)
	}
}
