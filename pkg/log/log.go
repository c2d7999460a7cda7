package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	JSONFormat   = "json"
	TextFormat   = "text"
	LogfmtFormat = "logfmt"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// CreateHandler creates a [slog.Handler] writing to w from level and format
// strings.
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(logFormat) {
	case JSONFormat:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	case TextFormat, "":
		return newCharmHandler(w, level, charmlog.TextFormatter), nil
	case LogfmtFormat:
		return newCharmHandler(w, level, charmlog.LogfmtFormatter), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, logFormat)
}

// GetLevel parses a log level name.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug", "trace":
		return slog.LevelDebug, nil
	}

	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}

func newCharmHandler(w io.Writer, level slog.Level, formatter charmlog.Formatter) *charmlog.Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		Formatter:       formatter,
		ReportTimestamp: true,
	})

	if !isTerminal(w) {
		l.SetColorProfile(termenv.Ascii)
	}

	return l
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
