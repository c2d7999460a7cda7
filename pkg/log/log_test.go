package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/synclab/pkg/log"
)

func TestCreateHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr error
		level   string
		format  string
		want    string
	}{
		"text": {
			level:  "info",
			format: "text",
			want:   "hello",
		},
		"logfmt": {
			level:  "debug",
			format: "logfmt",
			want:   "msg=hello",
		},
		"json": {
			level:  "warn",
			format: "json",
		},
		"unknown format": {
			level:   "info",
			format:  "yaml",
			wantErr: log.ErrUnknownFormat,
		},
		"unknown level": {
			level:   "loud",
			format:  "text",
			wantErr: log.ErrUnknownLevel,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}

			h, err := log.CreateHandler(buf, tc.level, tc.format)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}
			require.NoError(t, err)

			slog.New(h).Error("hello", slog.Int("n", 1))

			if tc.format == "json" {
				out := map[string]any{}
				require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
				assert.Equal(t, "hello", out["msg"])

				return
			}

			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestCreateHandlerLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h, err := log.CreateHandler(buf, "warn", "logfmt")
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Info("quiet")
	assert.Empty(t, buf.String())

	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
