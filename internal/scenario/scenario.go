package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/MacroPower/synclab/pkg/syncerrors"
	"github.com/MacroPower/synclab/pkg/syncs"
	"github.com/MacroPower/synclab/pkg/syncmetrics"
)

// Scenario is a named, repeatable concurrency check.
type Scenario interface {
	Name() string
	Description() string
	// Run executes the check. A failed invariant is reported through
	// [Report.Passed]; the error is reserved for runs that could not
	// complete, such as a cancelled ctx.
	Run(ctx context.Context, env Env) (Report, error)
}

// Env carries the dependencies a [Scenario] may use while running.
type Env struct {
	Logger  *slog.Logger
	Metrics *syncmetrics.Metrics
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}

	return e.Logger
}

// Report is the outcome of a single [Scenario] run.
type Report struct {
	Name     string
	Detail   string
	Duration time.Duration
	Trials   int
	Passed   bool
}

// Registry holds scenarios by name, in registration order.
type Registry struct {
	byName  map[string]Scenario
	running syncs.KeyLock
	order   []string
}

// NewRegistry creates a [Registry] containing scenarios. Names must be
// unique.
func NewRegistry(scenarios ...Scenario) (*Registry, error) {
	r := &Registry{byName: make(map[string]Scenario, len(scenarios))}

	for _, s := range scenarios {
		if _, ok := r.byName[s.Name()]; ok {
			return nil, fmt.Errorf("%w: duplicate scenario %q", syncerrors.ErrInvalidArgument, s.Name())
		}

		r.byName[s.Name()] = s
		r.order = append(r.order, s.Name())
	}

	return r, nil
}

// NewDefaultRegistry creates a [Registry] of every built-in scenario.
func NewDefaultRegistry(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return NewRegistry(
		NewCounter(cfg.Counter),
		NewBuffer(cfg.Buffer),
		NewBarrier(cfg.Barrier),
		NewSingleton(cfg.Singleton),
		NewSnapshot(cfg.Snapshot),
		NewCriticalSection(cfg.CriticalSection),
		NewTiming(cfg.Timing),
	)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Get returns the scenario called name.
func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", syncerrors.ErrUnknownScenario, name)
	}

	return s, nil
}

// Select returns the named scenarios, or all of them if names is empty.
// Every unknown name is reported.
func (r *Registry) Select(names ...string) ([]Scenario, error) {
	if len(names) == 0 {
		names = r.order
	}

	var merr error

	out := make([]Scenario, 0, len(names))

	for _, name := range names {
		s, err := r.Get(name)
		if err != nil {
			merr = multierror.Append(merr, err)

			continue
		}

		out = append(out, s)
	}

	if merr != nil {
		return nil, merr
	}

	return out, nil
}

// Run runs the named scenarios, or all of them if names is empty, with
// [RunAll]. A scenario never runs twice at once through the same registry;
// a second caller waits for the first to finish.
func (r *Registry) Run(ctx context.Context, env Env, names ...string) ([]Report, error) {
	selected, err := r.Select(names...)
	if err != nil {
		return nil, err
	}

	guarded := make([]Scenario, len(selected))
	for i, s := range selected {
		guarded[i] = exclusive{Scenario: s, locks: &r.running}
	}

	return RunAll(ctx, env, guarded...)
}

// exclusive holds a per-name lock while the wrapped scenario runs.
type exclusive struct {
	Scenario

	locks *syncs.KeyLock
}

func (e exclusive) Run(ctx context.Context, env Env) (Report, error) {
	if err := e.locks.Lock(ctx, e.Name()); err != nil {
		return Report{}, err
	}
	defer e.locks.Unlock(e.Name())

	return e.Scenario.Run(ctx, env)
}

// RunAll runs scenarios one after another and returns a report for each one
// that ran. The error aggregates every failed scenario, each wrapping
// [syncerrors.ErrScenarioFailed]. A done ctx stops the sequence.
func RunAll(ctx context.Context, env Env, scenarios ...Scenario) ([]Report, error) {
	var merr *multierror.Error

	reports := make([]Report, 0, len(scenarios))

	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("scenario %s: %w", s.Name(), err))

			break
		}

		logger := env.logger().With(slog.String("scenario", s.Name()))
		logger.Info("running scenario")

		start := time.Now()

		rep, err := s.Run(ctx, Env{Logger: logger, Metrics: env.Metrics})
		rep.Name = s.Name()
		rep.Duration = time.Since(start)

		if err != nil {
			rep.Passed = false
			if rep.Detail == "" {
				rep.Detail = err.Error()
			}

			merr = multierror.Append(merr, fmt.Errorf("%w: %s: %w", syncerrors.ErrScenarioFailed, s.Name(), err))
		} else if !rep.Passed {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s: %s", syncerrors.ErrScenarioFailed, s.Name(), rep.Detail))
		}

		if env.Metrics != nil {
			env.Metrics.RecordScenario(rep.Name, rep.Passed, rep.Duration)
		}

		logger.Info("scenario finished",
			slog.Bool("passed", rep.Passed),
			slog.Duration("duration", rep.Duration),
		)

		reports = append(reports, rep)
	}

	return reports, merr.ErrorOrNil()
}
