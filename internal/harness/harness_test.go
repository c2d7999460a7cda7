package harness_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/synclab/internal/harness"
	"github.com/MacroPower/synclab/pkg/syncerrors"
)

var errBoom = errors.New("boom")

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("all workers run once", func(t *testing.T) {
		t.Parallel()

		const workers = 16

		var (
			calls atomic.Int64
			seen  [workers]atomic.Bool
		)

		res, err := harness.Run(testContext(t), harness.Config{Name: "ok", Workers: workers},
			func(_ context.Context, w int) error {
				calls.Add(1)
				seen[w].Store(true)

				return nil
			})
		require.NoError(t, err)

		assert.Equal(t, int64(workers), calls.Load())
		assert.Equal(t, workers, res.Workers)
		assert.Zero(t, res.Failed)

		_, err = uuid.Parse(res.RunID)
		require.NoError(t, err)

		for w := range workers {
			assert.True(t, seen[w].Load(), "worker %d", w)
		}
	})

	t.Run("failures and panics are collected", func(t *testing.T) {
		t.Parallel()

		const workers = 10

		var finished atomic.Int64

		res, err := harness.Run(testContext(t), harness.Config{Name: "mixed", Workers: workers},
			func(_ context.Context, w int) error {
				defer finished.Add(1)

				switch w % 3 {
				case 0:
					return errBoom
				case 1:
					panic("worker blew up")
				}

				return nil
			})
		require.ErrorIs(t, err, errBoom)
		assert.ErrorContains(t, err, "worker blew up")

		// Workers 0,3,6,9 fail and 1,4,7 panic.
		assert.Equal(t, 7, res.Failed)
		assert.Equal(t, int64(workers), finished.Load())
	})

	t.Run("zero workers", func(t *testing.T) {
		t.Parallel()

		res, err := harness.Run(testContext(t), harness.Config{Name: "empty"},
			func(context.Context, int) error {
				t.Error("worker called")

				return nil
			})
		require.NoError(t, err)
		assert.Zero(t, res.Workers)
	})

	t.Run("negative workers", func(t *testing.T) {
		t.Parallel()

		_, err := harness.Run(testContext(t), harness.Config{Workers: -1},
			func(context.Context, int) error { return nil })
		require.ErrorIs(t, err, syncerrors.ErrInvalidArgument)
	})

	t.Run("cancelled while workers are running", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := harness.Run(ctx, harness.Config{Name: "stuck", Workers: 2},
			func(context.Context, int) error {
				<-release

				return nil
			})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestTrials(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		fn            harness.TrialFunc
		n             int
		wantCompleted int
		wantFailed    int
		wantErr       bool
	}{
		"all pass": {
			n:             5,
			fn:            func(context.Context, int) error { return nil },
			wantCompleted: 5,
		},
		"odd trials fail": {
			n: 6,
			fn: func(_ context.Context, trial int) error {
				if trial%2 == 1 {
					return errBoom
				}

				return nil
			},
			wantCompleted: 6,
			wantFailed:    3,
			wantErr:       true,
		},
		"zero trials": {
			n:  0,
			fn: func(context.Context, int) error { return errBoom },
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sum, err := harness.Trials(testContext(t), tc.n, tc.fn)
			if tc.wantErr {
				require.ErrorIs(t, err, errBoom)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tc.wantCompleted, sum.Completed)
			assert.Equal(t, tc.wantFailed, sum.Failed)
		})
	}
}

func TestTrialsStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sum, err := harness.Trials(ctx, 100, func(_ context.Context, trial int) error {
		if trial == 2 {
			cancel()
		}

		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, sum.Completed)
	assert.Zero(t, sum.Failed)
}
