package barrier_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/synclab/pkg/barrier"
	"github.com/MacroPower/synclab/pkg/syncerrors"
)

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return ctx
}

// recoverErr runs fn and returns the error it panicked with, if any.
func recoverErr(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = errors.New("non-error panic")
			}
		}
	}()

	fn()

	return nil
}

func TestGate(t *testing.T) {
	t.Parallel()

	t.Run("releases all waiters", func(t *testing.T) {
		t.Parallel()

		ctx := testContext(t)
		g := barrier.NewGate()

		const n = 20

		var (
			released atomic.Int32
			wg       sync.WaitGroup
		)

		wg.Add(n)

		for range n {
			go func() {
				defer wg.Done()

				assert.NoError(t, g.Await(ctx))
				released.Add(1)
			}()
		}

		time.Sleep(10 * time.Millisecond)
		assert.Zero(t, released.Load())
		assert.False(t, g.IsOpen())

		g.Open()
		wg.Wait()

		assert.Equal(t, int32(n), released.Load())
		assert.True(t, g.IsOpen())
	})

	t.Run("open is idempotent", func(t *testing.T) {
		t.Parallel()

		g := barrier.NewGate()
		g.Open()
		assert.NotPanics(t, g.Open)
		assert.True(t, g.IsOpen())
	})

	t.Run("await after open does not block", func(t *testing.T) {
		t.Parallel()

		g := barrier.NewGate()
		g.Open()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, g.Await(ctx))

		select {
		case <-g.Done():
		default:
			t.Fatal("done channel not closed")
		}
	})

	t.Run("await honours cancellation", func(t *testing.T) {
		t.Parallel()

		g := barrier.NewGate()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		require.ErrorIs(t, g.Await(ctx), context.DeadlineExceeded)
		assert.False(t, g.IsOpen())
	})
}

func TestLatch(t *testing.T) {
	t.Parallel()

	t.Run("negative count", func(t *testing.T) {
		t.Parallel()

		l, err := barrier.NewLatch(-1)
		require.ErrorIs(t, err, syncerrors.ErrInvalidArgument)
		assert.Nil(t, l)
	})

	t.Run("zero count is already done", func(t *testing.T) {
		t.Parallel()

		l, err := barrier.NewLatch(0)
		require.NoError(t, err)
		require.NoError(t, l.Await(testContext(t)))
		assert.Zero(t, l.Count())
	})

	t.Run("counts down to zero", func(t *testing.T) {
		t.Parallel()

		l, err := barrier.NewLatch(3)
		require.NoError(t, err)

		for want := 2; want >= 0; want-- {
			l.CountDown()
			assert.Equal(t, want, l.Count())
		}

		require.NoError(t, l.Await(testContext(t)))
	})

	t.Run("count down past zero panics", func(t *testing.T) {
		t.Parallel()

		l, err := barrier.NewLatch(1)
		require.NoError(t, err)

		l.CountDown()

		err = recoverErr(l.CountDown)
		require.ErrorIs(t, err, syncerrors.ErrCountUnderflow)
		assert.Zero(t, l.Count(), "count went negative")
	})

	t.Run("await honours cancellation", func(t *testing.T) {
		t.Parallel()

		l, err := barrier.NewLatch(1)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.ErrorIs(t, l.Await(ctx), context.Canceled)
		assert.Equal(t, 1, l.Count())
	})
}

func TestBarrier(t *testing.T) {
	t.Parallel()

	t.Run("three workers", func(t *testing.T) {
		t.Parallel()

		ctx := testContext(t)

		const workers = 3

		b, err := barrier.New(workers)
		require.NoError(t, err)
		assert.Equal(t, workers, b.Workers())

		var (
			opened     atomic.Bool
			early      atomic.Int32
			finished   atomic.Int32
			waitingFor sync.WaitGroup
		)

		waitingFor.Add(workers)

		for range workers {
			go func() {
				defer b.SignalDone()

				waitingFor.Done()

				if err := b.AwaitGate(ctx); err != nil {
					return
				}

				if !opened.Load() {
					early.Add(1)
				}

				time.Sleep(5 * time.Millisecond)
				finished.Add(1)
			}()
		}

		waitingFor.Wait()
		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, finished.Load(), "worker ran before the gate opened")
		assert.Equal(t, workers, b.Pending())

		opened.Store(true)
		b.OpenGate()

		require.NoError(t, b.AwaitAllDone(ctx))

		assert.Zero(t, early.Load())
		assert.Equal(t, int32(workers), finished.Load())
		assert.Zero(t, b.Pending())
		assert.True(t, b.GateOpen())
	})

	t.Run("await all done waits for the last worker", func(t *testing.T) {
		t.Parallel()

		b, err := barrier.New(2)
		require.NoError(t, err)

		b.OpenGate()
		b.SignalDone()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		require.ErrorIs(t, b.AwaitAllDone(ctx), context.DeadlineExceeded)
		assert.Equal(t, 1, b.Pending())

		b.SignalDone()
		require.NoError(t, b.AwaitAllDone(testContext(t)))
	})

	t.Run("failing workers still signal", func(t *testing.T) {
		t.Parallel()

		ctx := testContext(t)

		const workers = 8

		b, err := barrier.New(workers)
		require.NoError(t, err)

		errs := make(chan error, workers)

		for i := range workers {
			go func() {
				defer b.SignalDone()
				defer func() {
					if r := recover(); r != nil {
						errs <- errors.New("worker panicked")
					}
				}()

				if err := b.AwaitGate(ctx); err != nil {
					errs <- err

					return
				}

				if i%2 == 0 {
					panic("boom")
				}
			}()
		}

		b.OpenGate()
		require.NoError(t, b.AwaitAllDone(ctx))
		close(errs)

		n := 0
		for range errs {
			n++
		}

		assert.Equal(t, workers/2, n)
	})

	t.Run("signal past worker count panics", func(t *testing.T) {
		t.Parallel()

		b, err := barrier.New(1)
		require.NoError(t, err)

		b.SignalDone()

		err = recoverErr(b.SignalDone)
		require.ErrorIs(t, err, syncerrors.ErrCountUnderflow)
	})

	t.Run("negative workers", func(t *testing.T) {
		t.Parallel()

		_, err := barrier.New(-2)
		require.ErrorIs(t, err, syncerrors.ErrInvalidArgument)
	})

	t.Run("open before await", func(t *testing.T) {
		t.Parallel()

		b, err := barrier.New(1)
		require.NoError(t, err)

		b.OpenGate()
		b.OpenGate()

		require.NoError(t, b.AwaitGate(testContext(t)))
	})
}
