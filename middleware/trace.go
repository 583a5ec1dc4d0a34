package middleware

import (
	"context"

	"github.com/devmarvs/pmboard"
)

// Tracer starts spans for incoming requests.
type Tracer interface {
	Start(*pmboard.Context) (context.Context, func(status int, err error))
}

// Trace records request spans using the provided tracer.
func Trace(tracer Tracer) pmboard.Middleware {
	return TraceWithOptions(DefaultTraceOptions(tracer))
}

// TraceOptions configures tracing middleware.
type TraceOptions struct {
	Tracer    Tracer
	SkipPaths []string
}

// DefaultTraceOptions returns default tracing options.
func DefaultTraceOptions(tracer Tracer) TraceOptions {
	return TraceOptions{
		Tracer:    tracer,
		SkipPaths: []string{"/healthz", "/readyz"},
	}
}

// TraceWithOptions records request spans with options.
func TraceWithOptions(options TraceOptions) pmboard.Middleware {
	return func(next pmboard.Handler) pmboard.Handler {
		return func(ctx *pmboard.Context) error {
			if options.Tracer == nil {
				return next(ctx)
			}
			if shouldSkipPath(ctx.Request.URL.Path, options.SkipPaths) {
				return next(ctx)
			}

			recorder := newResponseRecorder(ctx.ResponseWriter)
			ctx.ResponseWriter = recorder

			traceCtx, finish := options.Tracer.Start(ctx)
			if traceCtx != nil {
				ctx.Request = ctx.Request.WithContext(traceCtx)
			}

			err := next(ctx)

			recorder.settle(err)
			if finish != nil {
				finish(recorder.Status(), err)
			}
			return err
		}
	}
}
