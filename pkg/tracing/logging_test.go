package tracing_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/synclab/pkg/tracing"
)

func TestLoggingTracer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level   slog.Level
		wantLog bool
	}{
		"debug enabled": {level: slog.LevelDebug, wantLog: true},
		"info level":    {level: slog.LevelInfo, wantLog: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: tc.level}))

			span := tracing.NewLoggingTracer(logger).StartSpan("harness.run")
			span.SetAttributes(slog.Int("workers", 3))
			span.SetAttributes(slog.Bool("passed", true))
			span.Finish()
			span.Finish()

			if !tc.wantLog {
				assert.Empty(t, buf.String())

				return
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 1, "finish logs once")

			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))

			assert.Equal(t, "trace", entry["msg"])
			assert.Equal(t, "harness.run", entry["operation_name"])
			assert.InDelta(t, 3, entry["workers"], 0)
			assert.Equal(t, true, entry["passed"])
			assert.Contains(t, entry, "time_ms")
		})
	}
}
