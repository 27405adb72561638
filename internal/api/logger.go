package api

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// SpanContextHandler decorates every record with the trace and span IDs of
// the active span so log lines can be correlated with traces.
type SpanContextHandler struct {
	next slog.Handler
}

func NewSpanContextHandler(next slog.Handler) *SpanContextHandler {
	return &SpanContextHandler{next: next}
}

func (h *SpanContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SpanContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.next.Handle(ctx, r)
}

func (h *SpanContextHandler) WithGroup(name string) slog.Handler {
	return NewSpanContextHandler(h.next.WithGroup(name))
}

func (h *SpanContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewSpanContextHandler(h.next.WithAttrs(attrs))
}

func SetupGlobalHandler(serviceName string) {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(NewSpanContextHandler(jsonHandler)).With(slog.String("service", serviceName))
	slog.SetDefault(logger)

	slog.Info("Logger initialized", "service", serviceName, "level", level.String())
}
