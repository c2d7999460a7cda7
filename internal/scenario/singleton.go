package scenario

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MacroPower/synclab/internal/harness"
	"github.com/MacroPower/synclab/pkg/lazy"
)

type instance struct {
	id int64
}

type providerKind struct {
	newProvider func(lazy.Constructor[*instance]) lazy.Provider[*instance]
	name        string
	safe        bool
}

var providerKinds = []providerKind{
	{
		name: "unsafe",
		newProvider: func(c lazy.Constructor[*instance]) lazy.Provider[*instance] {
			return lazy.NewUnsafe(c)
		},
	},
	{
		name: "check-lock-check",
		safe: true,
		newProvider: func(c lazy.Constructor[*instance]) lazy.Provider[*instance] {
			return lazy.New(c)
		},
	},
	{
		name: "holder",
		safe: true,
		newProvider: func(c lazy.Constructor[*instance]) lazy.Provider[*instance] {
			return lazy.NewHolder(c)
		},
	},
}

// Singleton races goroutines on the first call to a lazily constructed
// value and counts how many times the slow constructor ran.
type Singleton struct {
	cfg   SingletonConfig
	kinds []providerKind
}

// NewSingleton creates a [Singleton] scenario for the unguarded,
// check-lock-check and holder providers.
func NewSingleton(cfg SingletonConfig) *Singleton {
	return &Singleton{cfg: cfg, kinds: providerKinds}
}

// Name returns the registry name.
func (*Singleton) Name() string { return "singleton" }

// Description returns a one-line summary for listings.
func (*Singleton) Description() string {
	return "concurrent first use of unguarded and guarded lazy initialisation"
}

// Run races the first Get on each provider kind. A guarded provider that
// constructs more than once, or fails, fails the scenario.
func (s *Singleton) Run(ctx context.Context, env Env) (Report, error) {
	rep := Report{Passed: true, Trials: s.cfg.Trials}

	details := make([]string, 0, len(s.kinds))

	for _, kind := range s.kinds {
		var most int64

		sum, trialsErr := harness.Trials(ctx, s.cfg.Trials, func(ctx context.Context, _ int) error {
			var calls atomic.Int64

			p := kind.newProvider(func() (*instance, error) {
				id := calls.Add(1)
				time.Sleep(s.cfg.ConstructDelay)

				return &instance{id: id}, nil
			})

			var first atomic.Pointer[instance]

			_, err := harness.Run(ctx, harness.Config{
				Logger:  env.Logger,
				Name:    "singleton/" + kind.name,
				Workers: s.cfg.Goroutines,
			}, func(context.Context, int) error {
				inst, err := p.Get()
				if err != nil {
					return err
				}

				if !first.CompareAndSwap(nil, inst) && first.Load() != inst {
					return fmt.Errorf("got instance %d, another caller got %d", inst.id, first.Load().id)
				}

				return nil
			})

			most = max(most, calls.Load())

			if err != nil {
				return err
			}

			if n := calls.Load(); n != 1 {
				return fmt.Errorf("constructed %d times", n)
			}

			return nil
		})
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("singleton %s: %w", kind.name, err)
		}

		detail := fmt.Sprintf("%s: %d/%d trials constructed more than once, at most %d times",
			kind.name, sum.Failed, sum.Completed, most)

		if kind.safe && sum.Failed > 0 {
			rep.Passed = false
			detail += fmt.Sprintf(" (%v)", trialsErr)
		}

		details = append(details, detail)
	}

	rep.Detail = strings.Join(details, "; ")

	return rep, nil
}
