package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/MacroPower/synclab/pkg/snapshot"
)

// lockedStore performs its slow work while holding the lock.
type lockedStore struct {
	val Profile
	mu  sync.Mutex
}

func (s *lockedStore) compute(ctx context.Context, produce func(context.Context) (Profile, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := produce(ctx)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	s.val = v

	return nil
}

// CriticalSection compares a store that does slow work under its lock with
// one that only locks for the final swap.
type CriticalSection struct {
	cfg CriticalSectionConfig
}

// NewCriticalSection creates the critical-section scenario.
func NewCriticalSection(cfg CriticalSectionConfig) *CriticalSection {
	return &CriticalSection{cfg: cfg}
}

// Name returns the registry name.
func (*CriticalSection) Name() string { return "critical-section" }

// Description returns a one-line summary for listings.
func (*CriticalSection) Description() string {
	return "slow work inside versus outside the critical section"
}

// Run times the same tasks against a long-lock store and a minimal-lock cell.
func (s *CriticalSection) Run(ctx context.Context, env Env) (Report, error) {
	locked := &lockedStore{}
	long, err := s.timeTasks(ctx, locked.compute)
	if err != nil {
		return Report{}, fmt.Errorf("long lock: %w", err)
	}

	cell := snapshot.NewCell(Profile{})
	short, err := s.timeTasks(ctx, cell.Compute)
	if err != nil {
		return Report{}, fmt.Errorf("minimal lock: %w", err)
	}

	env.logger().Debug("critical section timings",
		slog.Duration("long", long),
		slog.Duration("minimal", short),
	)

	rep := Report{
		Trials: 1,
		Passed: true,
		Detail: fmt.Sprintf("%d tasks of %s with %d workers: long lock %s, minimal lock %s",
			s.cfg.Tasks, s.cfg.Work, s.cfg.PoolSize, long.Round(time.Millisecond), short.Round(time.Millisecond)),
	}

	if !s.expectsGap() {
		rep.Detail += " (no gap expected)"

		return rep, nil
	}

	// The long lock serialises all tasks; the minimal lock lets PoolSize of
	// them overlap, so it must save at least one unit of work.
	rep.Passed = short+s.cfg.Work/2 < long

	return rep, nil
}

// expectsGap reports whether tasks can overlap enough for the minimal lock to
// finish measurably sooner.
func (s *CriticalSection) expectsGap() bool {
	return s.cfg.PoolSize > 1 && s.cfg.Tasks > 1 && s.cfg.Work > 0
}

type computeFunc func(ctx context.Context, produce func(context.Context) (Profile, error)) error

// timeTasks runs cfg.Tasks computations, at most cfg.PoolSize at a time, and
// returns the elapsed time.
func (s *CriticalSection) timeTasks(ctx context.Context, compute computeFunc) (time.Duration, error) {
	sem := semaphore.NewWeighted(int64(s.cfg.PoolSize))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		merr *multierror.Error
	)

	start := time.Now()

	for task := range s.cfg.Tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()

			return 0, fmt.Errorf("acquire worker: %w", err)
		}

		wg.Add(1)

		go func() {
			defer wg.Done()
			defer sem.Release(1)

			err := compute(ctx, func(ctx context.Context) (Profile, error) {
				if err := sleep(ctx, s.cfg.Work); err != nil {
					return Profile{}, err
				}

				return profileFor(task), nil
			})
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, fmt.Errorf("task %d: %w", task, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if err := merr.ErrorOrNil(); err != nil {
		return 0, err
	}

	return time.Since(start), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
