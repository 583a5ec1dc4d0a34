// Package otel adapts OpenTelemetry to the gateway: server spans for the
// trace middleware and W3C propagation for upstream calls.
package otel

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/devmarvs/pmboard"
)

// InstrumentationName names the tracer used across pmboard.
const InstrumentationName = "github.com/devmarvs/pmboard"

// Tracer starts server spans from incoming requests.
type Tracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTracer builds a tracer from the global provider. Call Setup first to
// install a propagator.
func NewTracer(provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer:     provider.Tracer(InstrumentationName),
		propagator: otel.GetTextMapPropagator(),
	}
}

// Setup installs the W3C trace context and baggage propagators globally.
func Setup() {
	otel.SetTextMapPropagator(Propagator())
}

// Propagator returns the composite propagator used by pmboard.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// Start implements middleware.Tracer.
func (t *Tracer) Start(ctx *pmboard.Context) (context.Context, func(status int, err error)) {
	if ctx == nil || ctx.Request == nil {
		return context.Background(), func(int, error) {}
	}
	r := ctx.Request
	parent := t.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	spanCtx, span := t.tracer.Start(parent, r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.String("pmboard.request_id", ctx.RequestID()),
		),
	)

	return spanCtx, func(status int, err error) {
		if principal, ok := pmboard.PrincipalFromContext(ctx); ok {
			span.SetAttributes(attribute.String("pmboard.role", string(principal.Role)))
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if err != nil {
			span.RecordError(err)
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		span.End()
	}
}
