package cli_test

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/synclab/internal/cli"
	"github.com/MacroPower/synclab/pkg/syncerrors"
)

var testDataDir string

func init() {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	testDataDir = filepath.Join(dir, "testdata")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	tc := cli.NewRootCmd("test_"+strings.Join(args, "_"), "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs(args)
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()

	return stdout.String(), stderr.String(), err
}

func TestRunCmd(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := execute(t,
		"run", "buffer", "barrier",
		"--config", filepath.Join(testDataDir, "fast.yaml"),
	)
	require.NoError(t, err)
	assert.Empty(t, stderr, "stderr should be empty")

	assert.Contains(t, stdout, "PASS")
	assert.NotContains(t, stdout, "FAIL")
	assert.Contains(t, stdout, "buffer")
	assert.Contains(t, stdout, "barrier")
	assert.Contains(t, stdout, "2/2 scenarios passed")
}

func TestRunCmdAll(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"run",
		"--config", filepath.Join(testDataDir, "fast.yaml"),
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "7/7 scenarios passed")
}

func TestRunCmdFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"run", "buffer",
		"--config", filepath.Join(testDataDir, "fast.yaml"),
		"--buffer_items", "3",
		"--buffer_capacity", "1",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 items arrived in order through capacity 1")
}

func TestRunCmdFlagNamesFollowConfigKeys(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"run", "critical-section",
		"--critical_section_pool_size", "2",
		"--critical_section_tasks", "4",
		"--critical_section_work", "3ms",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "4 tasks of 3ms with 2 workers")
}

func TestRunCmdErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr    error
		wantSubstr string
		args       []string
	}{
		"unknown scenario": {
			args:    []string{"run", "nope"},
			wantErr: syncerrors.ErrUnknownScenario,
		},
		"invalid setting": {
			args:    []string{"run", "buffer", "--buffer_capacity", "0"},
			wantErr: syncerrors.ErrInvalidArgument,
		},
		"zero timeout": {
			args:       []string{"run", "buffer", "--timeout", "0s"},
			wantErr:    syncerrors.ErrInvalidArgument,
			wantSubstr: "timeout must be positive",
		},
		"negative timeout": {
			args:    []string{"metrics", "buffer", "--timeout=-1s"},
			wantErr: syncerrors.ErrInvalidArgument,
		},
		"unknown config field": {
			args:       []string{"list", "--config", filepath.Join(testDataDir, "unknown_field.yaml")},
			wantSubstr: "threads",
		},
		"missing config file": {
			args:       []string{"list", "--config", filepath.Join(testDataDir, "missing.yaml")},
			wantSubstr: "failed to open config",
		},
		"unknown log format": {
			args:       []string{"list", "--log_format", "xml"},
			wantSubstr: "failed creating log handler",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, tc.args...)
			require.Error(t, err)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}

			if tc.wantSubstr != "" {
				assert.ErrorContains(t, err, tc.wantSubstr)
			}
		})
	}
}

func TestListCmd(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := execute(t, "list")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "counter"))
	assert.True(t, strings.HasPrefix(lines[6], "timing"))
}

func TestMetricsCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"metrics", "buffer",
		"--config", filepath.Join(testDataDir, "fast.yaml"),
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "# TYPE synclab_buffer_operations_total counter")
	assert.Contains(t, stdout, `synclab_buffer_operations_total{buffer="buffer",operation="put"} 5`)
	assert.Contains(t, stdout, `synclab_scenario_runs_total{result="pass",scenario="buffer"} 1`)
	assert.Contains(t, stdout, "synclab_scenario_duration_seconds_bucket")
}

func BenchmarkRun(b *testing.B) {
	for range b.N {
		tc := cli.NewRootCmd("bench_run", "", "")
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		tc.SetArgs([]string{"run", "buffer", "--log_level=error"})
		tc.SetOut(stdout)
		tc.SetErr(stderr)

		err := tc.Execute()
		require.NoError(b, err)
		assert.Empty(b, stderr.String(), "stderr should be empty")
	}
}
