package barrier

import (
	"context"
	"fmt"
)

// Barrier is a two-phase start/completion barrier for a fixed number of
// workers. Create instances with [New].
//
// Typical use:
//
//	b, _ := barrier.New(n)
//	for range n {
//		go func() {
//			defer b.SignalDone()
//			if err := b.AwaitGate(ctx); err != nil {
//				return
//			}
//			work()
//		}()
//	}
//	b.OpenGate()
//	err := b.AwaitAllDone(ctx)
type Barrier struct {
	gate    *Gate
	done    *Latch
	workers int
}

// New creates a [Barrier] for workers goroutines.
func New(workers int) (*Barrier, error) {
	done, err := NewLatch(workers)
	if err != nil {
		return nil, fmt.Errorf("barrier: %w", err)
	}

	return &Barrier{
		gate:    NewGate(),
		done:    done,
		workers: workers,
	}, nil
}

// OpenGate releases all workers blocked in [Barrier.AwaitGate]. It is
// idempotent.
func (b *Barrier) OpenGate() {
	b.gate.Open()
}

// AwaitGate blocks until [Barrier.OpenGate] has been called or ctx ends.
func (b *Barrier) AwaitGate(ctx context.Context) error {
	return b.gate.Await(ctx)
}

// GateOpen reports whether the gate has been opened.
func (b *Barrier) GateOpen() bool {
	return b.gate.IsOpen()
}

// SignalDone records that one worker has finished. Each worker must call it
// exactly once on every exit path, usually with defer. Calling it more times
// than there are workers panics; see [Latch.CountDown].
func (b *Barrier) SignalDone() {
	b.done.CountDown()
}

// AwaitAllDone blocks until every worker has called [Barrier.SignalDone] or
// ctx ends.
func (b *Barrier) AwaitAllDone(ctx context.Context) error {
	return b.done.Await(ctx)
}

// Pending returns the number of workers that have not signalled completion.
func (b *Barrier) Pending() int {
	return b.done.Count()
}

// Workers returns the number of workers the barrier was created for.
func (b *Barrier) Workers() int {
	return b.workers
}
