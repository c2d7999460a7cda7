package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MacroPower/synclab/pkg/barrier"
)

// Barrier parks workers on a gate, opens it after a delay and waits for all
// of them to finish. It checks that no worker started early.
type Barrier struct {
	cfg BarrierConfig
}

// NewBarrier creates the barrier scenario.
func NewBarrier(cfg BarrierConfig) *Barrier {
	return &Barrier{cfg: cfg}
}

// Name returns the registry name.
func (*Barrier) Name() string { return "barrier" }

// Description returns a one-line summary for listings.
func (*Barrier) Description() string {
	return "workers released together by a start gate and awaited by a completion latch"
}

// Run starts the workers, opens the gate after the configured delay and
// reports how many finished after it opened.
func (s *Barrier) Run(ctx context.Context, env Env) (Report, error) {
	b, err := barrier.New(s.cfg.Workers)
	if err != nil {
		return Report{}, fmt.Errorf("create barrier: %w", err)
	}

	return s.run(ctx, env, b)
}

func (s *Barrier) run(ctx context.Context, env Env, b *barrier.Barrier) (Report, error) {
	// Parked workers must never outlive Run, whichever way it returns.
	defer b.OpenGate()

	var (
		opened   atomic.Bool
		early    atomic.Int32
		finished atomic.Int32
	)

	for w := range s.cfg.Workers {
		go func() {
			defer b.SignalDone()

			logger := env.logger().With(slog.Int("worker", w))
			logger.Debug("waiting for gate")

			if err := b.AwaitGate(ctx); err != nil {
				return
			}

			if !opened.Load() {
				early.Add(1)
			}

			logger.Debug("working")
			finished.Add(1)
		}()
	}

	timer := time.NewTimer(s.cfg.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return Report{}, fmt.Errorf("delay before opening gate: %w", ctx.Err())
	}

	if n := finished.Load(); n != 0 {
		return Report{
			Trials: 1,
			Detail: fmt.Sprintf("%d workers finished before the gate opened", n),
		}, nil
	}

	opened.Store(true)
	b.OpenGate()

	if err := b.AwaitAllDone(ctx); err != nil {
		return Report{}, err
	}

	rep := Report{
		Trials: 1,
		Passed: early.Load() == 0 && finished.Load() == int32(s.cfg.Workers),
		Detail: fmt.Sprintf("%d/%d workers finished after the gate opened, %d started early",
			finished.Load(), s.cfg.Workers, early.Load()),
	}

	return rep, nil
}
