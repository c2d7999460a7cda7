package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MacroPower/synclab/internal/harness"
	"github.com/MacroPower/synclab/pkg/barrier"
)

var errInitNotVisible = errors.New("initialisation not visible after waiting")

// Timing waits for a background initialisation either by sleeping and
// hoping it finished or by awaiting a latch it counts down.
type Timing struct {
	cfg TimingConfig
}

// NewTiming creates the timing scenario.
func NewTiming(cfg TimingConfig) *Timing {
	return &Timing{cfg: cfg}
}

// Name returns the registry name.
func (*Timing) Name() string { return "timing" }

// Description returns a one-line summary for listings.
func (*Timing) Description() string {
	return "sleeping for a hand-off versus awaiting an explicit latch"
}

// Run compares waiting a fixed time for an initialisation with waiting on a
// latch.
func (s *Timing) Run(ctx context.Context, _ Env) (Report, error) {
	slept, _ := harness.Trials(ctx, s.cfg.Trials, func(ctx context.Context, _ int) error {
		return s.trial(ctx, func(ctx context.Context, _ *barrier.Latch) error {
			return sleep(ctx, s.cfg.Sleep)
		})
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Report{}, fmt.Errorf("sleep: %w", ctxErr)
	}

	latched, latchErr := harness.Trials(ctx, s.cfg.Trials, func(ctx context.Context, _ int) error {
		return s.trial(ctx, func(ctx context.Context, l *barrier.Latch) error {
			return l.Await(ctx)
		})
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Report{}, fmt.Errorf("latch: %w", ctxErr)
	}

	rep := Report{
		Trials: s.cfg.Trials,
		Passed: latched.Failed == 0,
		Detail: fmt.Sprintf("sleep %s: saw initialisation in %d/%d trials; latch: saw it in %d/%d trials",
			s.cfg.Sleep, slept.Completed-slept.Failed, slept.Completed,
			latched.Completed-latched.Failed, latched.Completed),
	}
	if latchErr != nil {
		rep.Detail += fmt.Sprintf(" (%v)", latchErr)
	}

	return rep, nil
}

// trial starts an initialisation that takes cfg.InitDelay, runs wait and
// checks that the initialisation is visible afterwards.
func (s *Timing) trial(ctx context.Context, wait func(context.Context, *barrier.Latch) error) error {
	l, err := barrier.NewLatch(1)
	if err != nil {
		return err
	}

	var ready atomic.Bool

	go func() {
		time.Sleep(s.cfg.InitDelay)
		ready.Store(true)
		l.CountDown()
	}()

	// Leave no initialiser running past its trial.
	defer func() { _ = l.Await(context.Background()) }()

	if err := wait(ctx, l); err != nil {
		return err
	}

	if !ready.Load() {
		return errInitNotVisible
	}

	return nil
}
