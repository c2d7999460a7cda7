package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/MacroPower/synclab/pkg/buffer"
)

// Buffer passes numbered items from one producer to one consumer through a
// bounded buffer and checks that they arrive complete and in order.
type Buffer struct {
	cfg BufferConfig
}

// NewBuffer creates the buffer scenario.
func NewBuffer(cfg BufferConfig) *Buffer {
	return &Buffer{cfg: cfg}
}

// Name returns the registry name.
func (*Buffer) Name() string { return "buffer" }

// Description returns a one-line summary for listings.
func (*Buffer) Description() string {
	return "single producer and consumer through a bounded buffer"
}

// Run passes items from one producer to one consumer and checks their order.
func (s *Buffer) Run(ctx context.Context, env Env) (Report, error) {
	var opts []buffer.Option
	if env.Metrics != nil {
		opts = append(opts, buffer.WithMetrics(env.Metrics, s.Name()))
	}

	b, err := buffer.New[string](s.cfg.Capacity, opts...)
	if err != nil {
		return Report{}, fmt.Errorf("create buffer: %w", err)
	}

	want := make([]string, s.cfg.Items)
	for i := range want {
		want[i] = fmt.Sprintf("Data-%d", i)
	}

	got := make([]string, 0, s.cfg.Items)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer b.Close()

		for _, item := range want {
			if err := b.Put(gctx, item); err != nil {
				return fmt.Errorf("producer: %w", err)
			}

			env.logger().Debug("produced", slog.String("item", item))
		}

		return nil
	})

	g.Go(func() error {
		for range s.cfg.Items {
			item, err := b.Take(gctx)
			if err != nil {
				return fmt.Errorf("consumer: %w", err)
			}

			env.logger().Debug("consumed", slog.String("item", item))

			got = append(got, item)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return Report{Trials: 1}, err
	}

	rep := Report{Trials: 1, Passed: slices.Equal(want, got)}
	if rep.Passed {
		rep.Detail = fmt.Sprintf("%d items arrived in order through capacity %d", len(got), s.cfg.Capacity)
	} else {
		rep.Detail = fmt.Sprintf("sent %v, received %v", want, got)
	}

	return rep, nil
}
