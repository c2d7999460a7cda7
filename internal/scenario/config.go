package scenario

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/MacroPower/synclab/pkg/syncerrors"
)

// Config holds the settings for every built-in scenario.
type Config struct {
	Counter         CounterConfig         `yaml:"counter"`
	Buffer          BufferConfig          `yaml:"buffer"`
	Barrier         BarrierConfig         `yaml:"barrier"`
	Singleton       SingletonConfig       `yaml:"singleton"`
	Snapshot        SnapshotConfig        `yaml:"snapshot"`
	CriticalSection CriticalSectionConfig `yaml:"criticalSection"`
	Timing          TimingConfig          `yaml:"timing"`
}

// CounterConfig sizes the counter scenario.
type CounterConfig struct {
	Workers    int `yaml:"workers"`
	Increments int `yaml:"increments"`
	Trials     int `yaml:"trials"`
}

// BufferConfig sizes the buffer scenario.
type BufferConfig struct {
	Capacity int `yaml:"capacity"`
	Items    int `yaml:"items"`
}

// BarrierConfig sizes the barrier scenario.
type BarrierConfig struct {
	Workers int           `yaml:"workers"`
	Delay   time.Duration `yaml:"delay"`
}

// SingletonConfig sizes the singleton scenario.
type SingletonConfig struct {
	Goroutines     int           `yaml:"goroutines"`
	Trials         int           `yaml:"trials"`
	ConstructDelay time.Duration `yaml:"constructDelay"`
}

// SnapshotConfig sizes the torn-read check of the snapshot scenario.
type SnapshotConfig struct {
	Readers int `yaml:"readers"`
	Writers int `yaml:"writers"`
	Writes  int `yaml:"writes"`
}

// CriticalSectionConfig sizes the critical-section scenario.
type CriticalSectionConfig struct {
	PoolSize int           `yaml:"poolSize"`
	Tasks    int           `yaml:"tasks"`
	Work     time.Duration `yaml:"work"`
}

// TimingConfig sizes the timing scenario.
type TimingConfig struct {
	Trials    int           `yaml:"trials"`
	InitDelay time.Duration `yaml:"initDelay"`
	Sleep     time.Duration `yaml:"sleep"`
}

// DefaultConfig returns the settings the scenarios were designed around.
func DefaultConfig() Config {
	return Config{
		Counter: CounterConfig{
			Workers:    10,
			Increments: 10_000,
			Trials:     5,
		},
		Buffer: BufferConfig{
			Capacity: 10,
			Items:    5,
		},
		Barrier: BarrierConfig{
			Workers: 3,
			Delay:   100 * time.Millisecond,
		},
		Singleton: SingletonConfig{
			Goroutines:     10,
			Trials:         20,
			ConstructDelay: 5 * time.Millisecond,
		},
		Snapshot: SnapshotConfig{
			Readers: 4,
			Writers: 2,
			Writes:  1000,
		},
		CriticalSection: CriticalSectionConfig{
			PoolSize: 4,
			Tasks:    8,
			Work:     10 * time.Millisecond,
		},
		Timing: TimingConfig{
			Trials:    5,
			InitDelay: 10 * time.Millisecond,
			Sleep:     2 * time.Millisecond,
		},
	}
}

// Validate reports every setting that is out of range.
func (c Config) Validate() error {
	var merr *multierror.Error

	positive := func(name string, v int) {
		if v < 1 {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s must be at least 1, got %d",
				syncerrors.ErrInvalidArgument, name, v))
		}
	}

	nonNegative := func(name string, d time.Duration) {
		if d < 0 {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s must not be negative, got %s",
				syncerrors.ErrInvalidArgument, name, d))
		}
	}

	positive("counter.workers", c.Counter.Workers)
	positive("counter.increments", c.Counter.Increments)
	positive("counter.trials", c.Counter.Trials)
	positive("buffer.capacity", c.Buffer.Capacity)
	positive("buffer.items", c.Buffer.Items)
	positive("barrier.workers", c.Barrier.Workers)
	nonNegative("barrier.delay", c.Barrier.Delay)
	positive("singleton.goroutines", c.Singleton.Goroutines)
	positive("singleton.trials", c.Singleton.Trials)
	nonNegative("singleton.constructDelay", c.Singleton.ConstructDelay)
	positive("snapshot.readers", c.Snapshot.Readers)
	positive("snapshot.writers", c.Snapshot.Writers)
	positive("snapshot.writes", c.Snapshot.Writes)
	positive("criticalSection.poolSize", c.CriticalSection.PoolSize)
	positive("criticalSection.tasks", c.CriticalSection.Tasks)
	nonNegative("criticalSection.work", c.CriticalSection.Work)
	positive("timing.trials", c.Timing.Trials)
	nonNegative("timing.initDelay", c.Timing.InitDelay)
	nonNegative("timing.sleep", c.Timing.Sleep)

	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid scenario config: %w", err)
	}

	return nil
}
