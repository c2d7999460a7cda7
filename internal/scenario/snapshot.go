package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/MacroPower/synclab/internal/harness"
	"github.com/MacroPower/synclab/pkg/snapshot"
)

// Snapshot fails an update halfway through, once against a record updated
// field by field and once against an atomic store, then checks concurrent
// readers for torn values.
type Snapshot struct {
	cfg SnapshotConfig
}

// NewSnapshot creates the snapshot scenario.
func NewSnapshot(cfg SnapshotConfig) *Snapshot {
	return &Snapshot{cfg: cfg}
}

// Name returns the registry name.
func (*Snapshot) Name() string { return "snapshot" }

// Description returns a one-line summary for listings.
func (*Snapshot) Description() string {
	return "failed and concurrent updates of an immutable record behind an atomic reference"
}

// Run fails an update half way on the in-place and atomic profiles, then
// checks concurrent readers for torn values.
func (s *Snapshot) Run(ctx context.Context, env Env) (Report, error) {
	initial := Profile{Name: "Alice", Age: 30}

	inPlace := fieldProfile{name: initial.Name, age: initial.Age}
	inPlaceErr := inPlace.update("Bob", -1)
	inPlaceTorn := inPlaceErr != nil && (inPlace.name != initial.Name || inPlace.age != initial.Age)

	store := snapshot.NewStore(initial)
	storeErr := store.Update(func(p Profile) (Profile, error) {
		next := p.WithName("Bob")
		if err := validateAge(-1); err != nil {
			return p, err
		}

		return next.WithAge(-1), nil
	})
	storeKept := storeErr != nil && store.Load() == initial

	env.logger().Debug("failed update",
		slog.String("in_place", fmt.Sprintf("%s (%d)", inPlace.name, inPlace.age)),
		slog.String("store", store.Load().String()),
	)

	torn, reads, err := s.tornReads(ctx, env)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Trials: 1,
		Passed: storeKept && torn == 0,
		Detail: fmt.Sprintf("in-place after failed update: %s (%d), torn=%t; store after failed update: %s; "+
			"%d torn of %d concurrent reads",
			inPlace.name, inPlace.age, inPlaceTorn, store.Load(), torn, reads),
	}

	return rep, nil
}

// tornReads runs writers replacing the stored profile while readers check
// every value they load.
func (s *Snapshot) tornReads(ctx context.Context, env Env) (int64, int64, error) {
	store := snapshot.NewStore(profileFor(0))

	var (
		writing atomic.Int32
		torn    atomic.Int64
		reads   atomic.Int64
	)

	writing.Store(int32(s.cfg.Writers))

	_, err := harness.Run(ctx, harness.Config{
		Logger:  env.Logger,
		Name:    "snapshot/torn-reads",
		Workers: s.cfg.Writers + s.cfg.Readers,
	}, func(ctx context.Context, w int) error {
		if w < s.cfg.Writers {
			defer writing.Add(-1)

			for i := range s.cfg.Writes {
				store.Replace(profileFor(w*s.cfg.Writes + i))
			}

			return nil
		}

		for writing.Load() > 0 && ctx.Err() == nil {
			reads.Add(1)

			if !store.Load().consistent() {
				torn.Add(1)
			}
		}

		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("torn reads: %w", err)
	}

	return torn.Load(), reads.Load(), nil
}
