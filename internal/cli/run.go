package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MacroPower/synclab/internal/runtui"
	"github.com/MacroPower/synclab/internal/scenario"
	"github.com/MacroPower/synclab/pkg/syncerrors"
	"github.com/MacroPower/synclab/pkg/syncmetrics"
)

const (
	runDesc = `Run concurrency scenarios and report whether each invariant held.

With no arguments every scenario runs, in the order shown by "list".
`
	runExample = `  # Run every scenario
  synclab run

  # Run two scenarios with more contention
  synclab run counter singleton --counter_workers 32 --singleton_goroutines 64

  # Load settings from a file and log progress
  synclab run --config synclab.yaml --log_level info
`
	metricsDesc = `Run scenarios with metrics enabled and print the collected metrics in the
Prometheus text exposition format.
`
)

// NewRunCmd returns the run command.
func NewRunCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run [scenario...]",
		Short:   "Run scenarios",
		Long:    runDesc,
		Example: runExample,
		RunE: func(cc *cobra.Command, args []string) error {
			if err := applyScenarioFlags(cc.Flags(), cfg); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			quiet, err := cc.Flags().GetBool("quiet")
			if err != nil {
				return fmt.Errorf("%w: %w", syncerrors.ErrInvalidArgument, err)
			}

			out := cc.OutOrStdout()

			run := runScenarios
			if !quiet && isTerminal(out) {
				run = func(ctx context.Context, cfg Config, m *syncmetrics.Metrics, names []string) ([]scenario.Report, error) {
					return runInteractive(ctx, cfg, m, names, out)
				}
			}

			reports, err := run(cc.Context(), *cfg, nil, args)
			renderReports(out, reports)

			return err
		},
		ValidArgsFunction: completeScenarioNames(cfg),
	}

	addScenarioFlags(cmd.Flags())
	cmd.Flags().BoolP("quiet", "q", false, "Disable the interactive progress display")

	return cmd
}

// NewMetricsCmd returns the metrics command.
func NewMetricsCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics [scenario...]",
		Short: "Run scenarios and print Prometheus metrics",
		Long:  metricsDesc,
		RunE: func(cc *cobra.Command, args []string) error {
			if err := applyScenarioFlags(cc.Flags(), cfg); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()

			_, runErr := runScenarios(cc.Context(), *cfg, syncmetrics.NewMetrics(reg), args)

			if err := writeMetrics(cc, reg); err != nil {
				return err
			}

			return runErr
		},
		ValidArgsFunction: completeScenarioNames(cfg),
	}

	addScenarioFlags(cmd.Flags())

	return cmd
}

func runScenarios(ctx context.Context, cfg Config, m *syncmetrics.Metrics, names []string) ([]scenario.Report, error) {
	reg, err := scenario.NewDefaultRegistry(cfg.Scenarios)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger := slog.With(slog.String("cmd", "run"))
	logger.Debug("running scenarios", slog.Any("names", names))

	reports, err := reg.Run(ctx, scenario.Env{Logger: logger, Metrics: m}, names...)
	if err != nil {
		return reports, fmt.Errorf("run failed: %w", err)
	}

	return reports, nil
}

// runInteractive runs the scenarios one at a time while a progress display
// follows along on out.
func runInteractive(
	ctx context.Context, cfg Config, m *syncmetrics.Metrics, names []string, out io.Writer,
) ([]scenario.Report, error) {
	reg, err := scenario.NewDefaultRegistry(cfg.Scenarios)
	if err != nil {
		return nil, err
	}

	selected, err := reg.Select(names...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	p := tea.NewProgram(runtui.NewModel(), tea.WithOutput(out), tea.WithContext(ctx))

	type result struct {
		err     error
		reports []scenario.Report
	}

	results := make(chan result, 1)

	go func() {
		var (
			merr    *multierror.Error
			reports []scenario.Report
		)

		env := scenario.Env{Logger: slog.With(slog.String("cmd", "run")), Metrics: m}

		p.Send(runtui.EventTotal(len(selected)))

		for _, s := range selected {
			p.Send(runtui.EventStarted(s.Name()))

			reps, err := reg.Run(ctx, env, s.Name())
			if err != nil {
				merr = multierror.Append(merr, err)
			}

			rep := scenario.Report{Name: s.Name()}
			if len(reps) > 0 {
				rep = reps[0]
				reports = append(reports, rep)
			}

			p.Send(runtui.EventFinished{Report: rep, Err: err})

			if ctx.Err() != nil {
				break
			}
		}

		p.Send(runtui.EventDone{})

		results <- result{reports: reports, err: merr.ErrorOrNil()}
	}()

	_, tuiErr := p.Run()

	// Stop the remaining scenarios if the display was closed early.
	cancel()

	res := <-results

	if tuiErr != nil && !errors.Is(tuiErr, tea.ErrProgramKilled) {
		return res.reports, fmt.Errorf("progress display: %w", tuiErr)
	}

	if res.err != nil {
		return res.reports, fmt.Errorf("run failed: %w", res.err)
	}

	return res.reports, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func writeMetrics(cc *cobra.Command, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(cc.OutOrStdout(), expfmt.NewFormat(expfmt.TypeTextPlain))

	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}

	return nil
}

func completeScenarioNames(cfg *Config) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		reg, err := scenario.NewDefaultRegistry(cfg.Scenarios)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		return reg.Names(), cobra.ShellCompDirectiveNoFileComp
	}
}
