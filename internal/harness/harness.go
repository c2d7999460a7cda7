package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/MacroPower/synclab/pkg/barrier"
	"github.com/MacroPower/synclab/pkg/tracing"
)

// WorkerFunc is the body of one worker. worker is in [0, Config.Workers).
type WorkerFunc func(ctx context.Context, worker int) error

// Config configures a [Run].
type Config struct {
	// Logger defaults to [slog.Default].
	Logger *slog.Logger
	// Name identifies the run in log output.
	Name    string
	Workers int
}

// Result describes a finished [Run].
type Result struct {
	RunID    string
	Workers  int
	Failed   int
	Duration time.Duration
}

// Run starts cfg.Workers goroutines, releases them together and waits for
// all of them to signal completion.
//
// Every worker signals completion even if it fails or panics. The returned
// error aggregates all worker failures. If ctx ends before every worker has
// finished, Run returns an error wrapping ctx.Err() without waiting further.
func Run(ctx context.Context, cfg Config, fn WorkerFunc) (Result, error) {
	res := Result{
		RunID:   uuid.NewString(),
		Workers: cfg.Workers,
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		slog.String("run_id", res.RunID),
		slog.String("run", cfg.Name),
	)

	b, err := barrier.New(cfg.Workers)
	if err != nil {
		return res, fmt.Errorf("harness: %w", err)
	}

	var (
		mu   sync.Mutex
		merr *multierror.Error
	)

	for w := range cfg.Workers {
		go func() {
			defer b.SignalDone()

			if err := runWorker(ctx, b, w, fn); err != nil {
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
			}
		}()
	}

	logger.Debug("opening gate", slog.Int("workers", cfg.Workers))

	span := tracing.NewLoggingTracer(logger).StartSpan("harness.run")
	defer span.Finish()

	start := time.Now()

	b.OpenGate()

	if err := b.AwaitAllDone(ctx); err != nil {
		res.Duration = time.Since(start)
		logger.Warn("run abandoned",
			slog.Int("pending", b.Pending()),
			slog.Any("err", err),
		)

		return res, fmt.Errorf("run %s: %w", cfg.Name, err)
	}

	res.Duration = time.Since(start)

	mu.Lock()
	defer mu.Unlock()

	if merr != nil {
		res.Failed = len(merr.Errors)
	}

	span.SetAttributes(
		slog.Int("workers", res.Workers),
		slog.Int("failed", res.Failed),
	)

	if err := merr.ErrorOrNil(); err != nil {
		return res, fmt.Errorf("run %s: %w", cfg.Name, err)
	}

	return res, nil
}

func runWorker(ctx context.Context, b *barrier.Barrier, worker int, fn WorkerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %d: panic: %v", worker, r)
		}
	}()

	if err := b.AwaitGate(ctx); err != nil {
		return fmt.Errorf("worker %d: %w", worker, err)
	}

	if err := fn(ctx, worker); err != nil {
		return fmt.Errorf("worker %d: %w", worker, err)
	}

	return nil
}
