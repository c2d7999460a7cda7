package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

var (
	_ Tracer = LoggingTracer{}
	_ Span   = (*loggingSpan)(nil)
)

// Tracer starts spans.
type Tracer interface {
	StartSpan(operationName string) Span
}

// Span is a timed operation. Attributes added before [Span.Finish] are
// reported with it.
type Span interface {
	SetAttributes(attrs ...slog.Attr)
	Finish()
}

// LoggingTracer reports each finished span as one debug log entry.
type LoggingTracer struct {
	logger *slog.Logger
}

func NewLoggingTracer(logger *slog.Logger) LoggingTracer {
	if logger == nil {
		logger = slog.Default()
	}

	return LoggingTracer{
		logger: logger,
	}
}

//nolint:ireturn
func (l LoggingTracer) StartSpan(operationName string) Span {
	return &loggingSpan{
		logger:        l.logger,
		operationName: operationName,
		start:         time.Now(),
	}
}

type loggingSpan struct {
	start         time.Time
	logger        *slog.Logger
	operationName string
	attrs         []slog.Attr
	mu            sync.Mutex
	finished      bool
}

func (s *loggingSpan) SetAttributes(attrs ...slog.Attr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attrs = append(s.attrs, attrs...)
}

// Finish logs the span. Only the first call has an effect.
func (s *loggingSpan) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}

	s.finished = true

	attrs := make([]slog.Attr, 0, len(s.attrs)+2)
	attrs = append(attrs, s.attrs...)
	attrs = append(attrs,
		slog.String("operation_name", s.operationName),
		slog.Float64("time_ms", time.Since(s.start).Seconds()*1e3),
	)

	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}
