package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MacroPower/synclab/internal/harness"
	"github.com/MacroPower/synclab/pkg/counter"
)

type counterKind struct {
	newCounter func() counter.Counter
	name       string
	safe       bool
}

var counterKinds = []counterKind{
	{name: "mutex", safe: true, newCounter: func() counter.Counter { return &counter.Mutex{} }},
	{name: "atomic", safe: true, newCounter: func() counter.Counter { return &counter.Atomic{} }},
	{name: "padded", safe: true, newCounter: func() counter.Counter { return &counter.Padded{} }},
	{name: "unsafe", safe: false, newCounter: func() counter.Counter { return &counter.Unsafe{} }},
}

// Counter increments each counter implementation from several workers and
// checks the final count.
type Counter struct {
	cfg CounterConfig
}

// NewCounter creates the counter scenario.
func NewCounter(cfg CounterConfig) *Counter {
	return &Counter{cfg: cfg}
}

// Name returns the registry name.
func (*Counter) Name() string { return "counter" }

// Description returns a one-line summary for listings.
func (*Counter) Description() string {
	return "lock, lock-free, padded and unsafe counters under concurrent increments"
}

// Run increments every counter kind in repeated trials. A safe counter that
// loses an update fails the scenario.
func (s *Counter) Run(ctx context.Context, env Env) (Report, error) {
	want := int64(s.cfg.Workers) * int64(s.cfg.Increments)
	rep := Report{Passed: true, Trials: s.cfg.Trials}

	details := make([]string, 0, len(counterKinds))
	printer := message.NewPrinter(language.English)

	for _, kind := range counterKinds {
		lowest := want

		sum, err := harness.Trials(ctx, s.cfg.Trials, func(ctx context.Context, _ int) error {
			c := kind.newCounter()

			_, err := harness.Run(ctx, harness.Config{
				Logger:  env.Logger,
				Name:    "counter/" + kind.name,
				Workers: s.cfg.Workers,
			}, func(context.Context, int) error {
				for range s.cfg.Increments {
					c.Increment()
				}

				return nil
			})
			if err != nil {
				return err
			}

			got := c.Get()
			lowest = min(lowest, got)

			if got != want {
				return fmt.Errorf("got %d, want %d", got, want)
			}

			return nil
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, fmt.Errorf("counter %s: %w", kind.name, ctxErr)
		}

		if sum.Failed == 0 {
			details = append(details, printer.Sprintf("%s: %d/%d trials reached %d",
				kind.name, sum.Completed, sum.Completed, want))

			continue
		}

		details = append(details, printer.Sprintf("%s: %d/%d trials lost updates, lowest %d of %d",
			kind.name, sum.Failed, sum.Completed, lowest, want))

		if kind.safe {
			rep.Passed = false
			env.logger().Error("counter lost updates",
				slog.String("counter", kind.name),
				slog.Any("err", err),
			)
		}
	}

	rep.Detail = strings.Join(details, "; ")

	return rep, nil
}
