package barrier

import (
	"context"
	"fmt"
	"sync"

	"github.com/MacroPower/synclab/pkg/syncerrors"
)

// Latch is a countdown that releases its waiters when it reaches zero. Create
// instances with [NewLatch].
type Latch struct {
	done  chan struct{}
	mu    sync.Mutex
	count int
}

// NewLatch creates a [Latch] that opens after count calls to
// [Latch.CountDown].
func NewLatch(count int) (*Latch, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: latch count must not be negative, got %d",
			syncerrors.ErrInvalidArgument, count)
	}

	l := &Latch{
		count: count,
		done:  make(chan struct{}),
	}
	if count == 0 {
		close(l.done)
	}

	return l, nil
}

// CountDown decrements the count, releasing waiters when it reaches zero.
//
// Counting down a latch that is already at zero is a programming error and
// panics with an error wrapping [syncerrors.ErrCountUnderflow], in the same
// way a negative [sync.WaitGroup] counter does.
func (l *Latch) CountDown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		panic(fmt.Errorf("%w: latch counted down past zero", syncerrors.ErrCountUnderflow))
	}

	l.count--
	if l.count == 0 {
		close(l.done)
	}
}

// Count returns the remaining count.
func (l *Latch) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Done returns a channel that is closed when the count reaches zero.
func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// Await blocks until the count reaches zero or ctx ends.
func (l *Latch) Await(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	default:
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("await latch: %w", ctx.Err())
	}
}
