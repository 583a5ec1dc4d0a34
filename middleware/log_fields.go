package middleware

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/devmarvs/pmboard"
)

// LogField builds a structured log attribute.
type LogField func(*pmboard.Context, *responseRecorder, time.Duration) slog.Attr

// DefaultLogFields returns the standard access log fields.
func DefaultLogFields() []LogField {
	return []LogField{
		LogMethod(),
		LogPath(),
		LogStatus(),
		LogDuration(),
		LogBytes(),
		LogRole(),
		LogTraceID(),
	}
}

// LogMethod logs the HTTP method.
func LogMethod() LogField {
	return func(ctx *pmboard.Context, _ *responseRecorder, _ time.Duration) slog.Attr {
		return slog.String("method", ctx.Request.Method)
	}
}

// LogPath logs the request path.
func LogPath() LogField {
	return func(ctx *pmboard.Context, _ *responseRecorder, _ time.Duration) slog.Attr {
		return slog.String("path", ctx.Request.URL.Path)
	}
}

// LogStatus logs the response status.
func LogStatus() LogField {
	return func(_ *pmboard.Context, recorder *responseRecorder, _ time.Duration) slog.Attr {
		return slog.Int("status", recorder.Status())
	}
}

// LogDuration logs request latency.
func LogDuration() LogField {
	return func(_ *pmboard.Context, _ *responseRecorder, duration time.Duration) slog.Attr {
		return slog.Duration("duration", duration)
	}
}

// LogBytes logs response size in bytes.
func LogBytes() LogField {
	return func(_ *pmboard.Context, recorder *responseRecorder, _ time.Duration) slog.Attr {
		return slog.Int("bytes", recorder.Bytes())
	}
}

// LogRole logs the role of the session principal, if any. The token is
// never logged.
func LogRole() LogField {
	return func(ctx *pmboard.Context, _ *responseRecorder, _ time.Duration) slog.Attr {
		if principal, ok := pmboard.PrincipalFromContext(ctx); ok {
			return slog.String("role", string(principal.Role))
		}
		return slog.String("role", "")
	}
}

// LogTraceID logs the trace id of the server span, or of the caller's
// traceparent when tracing is off.
func LogTraceID() LogField {
	return func(ctx *pmboard.Context, _ *responseRecorder, _ time.Duration) slog.Attr {
		spanCtx := trace.SpanContextFromContext(ctx.Request.Context())
		if spanCtx.HasTraceID() {
			return slog.String("trace_id", spanCtx.TraceID().String())
		}
		if traceID, _, ok := pmboard.TraceIDs(pmboard.RequestMetadataFromRequest(ctx.Request).Traceparent); ok {
			return slog.String("trace_id", traceID)
		}
		return slog.String("trace_id", "")
	}
}
