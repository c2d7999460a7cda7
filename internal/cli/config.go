package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/MacroPower/synclab/internal/scenario"
	"github.com/MacroPower/synclab/pkg/syncerrors"
)

// Config is the full CLI configuration. It can be loaded from a YAML file
// with --config; flags given on the command line take precedence.
type Config struct {
	LogLevel  string          `yaml:"logLevel"`
	LogFormat string          `yaml:"logFormat"`
	Scenarios scenario.Config `yaml:"scenarios"`
	Timeout   time.Duration   `yaml:"timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "text",
		Timeout:   5 * time.Minute,
		Scenarios: scenario.DefaultConfig(),
	}
}

// LoadConfig reads path over [DefaultConfig]. Fields missing from the file
// keep their defaults; unknown fields are an error. An empty path returns
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path) //nolint:gosec // path is provided by the user.
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close() //nolint:errcheck // read only.

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid setting, including the scenario settings.
func (c Config) Validate() error {
	var merr *multierror.Error

	if c.Timeout <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("%w: timeout must be positive, got %s",
			syncerrors.ErrInvalidArgument, c.Timeout))
	}

	if err := c.Scenarios.Validate(); err != nil {
		merr = multierror.Append(merr, err)
	}

	return merr.ErrorOrNil()
}

type intFlag struct {
	field   *int
	section string
	key     string
	usage   string
}

type durationFlag struct {
	field   *time.Duration
	section string
	key     string
	usage   string
}

// flagName derives a flag name from the YAML path of a setting, so that
// "criticalSection.poolSize" becomes "critical_section_pool_size".
func flagName(section, key string) string {
	return strcase.ToSnake(section) + "_" + strcase.ToSnake(key)
}

// scenarioFlags binds command-line overrides to the scenario settings.
func scenarioFlags(c *scenario.Config) ([]intFlag, []durationFlag) {
	ints := []intFlag{
		{&c.Counter.Workers, "counter", "workers", "Goroutines incrementing each counter"},
		{&c.Counter.Increments, "counter", "increments", "Increments per counter goroutine"},
		{&c.Counter.Trials, "counter", "trials", "Repetitions of the counter check"},
		{&c.Buffer.Capacity, "buffer", "capacity", "Capacity of the bounded buffer"},
		{&c.Buffer.Items, "buffer", "items", "Items passed through the buffer"},
		{&c.Barrier.Workers, "barrier", "workers", "Workers parked on the start gate"},
		{&c.Singleton.Goroutines, "singleton", "goroutines", "Goroutines racing on first use"},
		{&c.Singleton.Trials, "singleton", "trials", "Repetitions of the singleton check"},
		{&c.Snapshot.Readers, "snapshot", "readers", "Concurrent snapshot readers"},
		{&c.Snapshot.Writers, "snapshot", "writers", "Concurrent snapshot writers"},
		{&c.Snapshot.Writes, "snapshot", "writes", "Replacements per snapshot writer"},
		{&c.CriticalSection.PoolSize, "criticalSection", "poolSize", "Concurrent critical-section tasks"},
		{&c.CriticalSection.Tasks, "criticalSection", "tasks", "Critical-section tasks"},
		{&c.Timing.Trials, "timing", "trials", "Repetitions of the timing check"},
	}

	durations := []durationFlag{
		{&c.Barrier.Delay, "barrier", "delay", "Delay before the start gate opens"},
		{&c.Singleton.ConstructDelay, "singleton", "constructDelay", "Duration of each lazy construction"},
		{&c.CriticalSection.Work, "criticalSection", "work", "Duration of each critical-section task"},
		{&c.Timing.InitDelay, "timing", "initDelay", "Duration of the timed initialisation"},
		{&c.Timing.Sleep, "timing", "sleep", "Sleep used in place of a hand-off"},
	}

	return ints, durations
}

func addScenarioFlags(flags *pflag.FlagSet) {
	defaults := scenario.DefaultConfig()
	ints, durations := scenarioFlags(&defaults)

	for _, f := range ints {
		flags.Int(flagName(f.section, f.key), *f.field, f.usage)
	}

	for _, f := range durations {
		flags.Duration(flagName(f.section, f.key), *f.field, f.usage)
	}

	flags.Duration("timeout", DefaultConfig().Timeout, "Timeout for the whole run")
}

// applyScenarioFlags copies every flag that was set explicitly into cfg.
func applyScenarioFlags(flags *pflag.FlagSet, cfg *Config) error {
	var merr error

	ints, durations := scenarioFlags(&cfg.Scenarios)

	for _, f := range ints {
		name := flagName(f.section, f.key)
		if !flags.Changed(name) {
			continue
		}

		v, err := flags.GetInt(name)
		if err != nil {
			merr = multierror.Append(merr, err)

			continue
		}

		*f.field = v
	}

	for _, f := range durations {
		name := flagName(f.section, f.key)
		if !flags.Changed(name) {
			continue
		}

		v, err := flags.GetDuration(name)
		if err != nil {
			merr = multierror.Append(merr, err)

			continue
		}

		*f.field = v
	}

	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			merr = multierror.Append(merr, err)
		} else {
			cfg.Timeout = v
		}
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", syncerrors.ErrInvalidArgument, merr)
	}

	return nil
}
