package httpclient

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingRoundTripper wraps each upstream call in a client span and injects
// the W3C trace context into the outgoing headers.
type TracingRoundTripper struct {
	Base       http.RoundTripper
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTracingRoundTripper builds a tracing transport. A nil propagator uses
// the global one.
func NewTracingRoundTripper(base http.RoundTripper, provider trace.TracerProvider, propagator propagation.TextMapPropagator) *TracingRoundTripper {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	if propagator == nil {
		propagator = otel.GetTextMapPropagator()
	}
	return &TracingRoundTripper{
		Base:       base,
		tracer:     provider.Tracer("github.com/devmarvs/pmboard/httpclient"),
		propagator: propagator,
	}
}

// RoundTrip executes the request inside a client span.
func (t *TracingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx, span := t.tracer.Start(req.Context(), "upstream "+req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
			attribute.String("server.address", req.URL.Host),
		),
	)
	defer span.End()

	clone := req.Clone(ctx)
	t.propagator.Inject(ctx, propagation.HeaderCarrier(clone.Header))

	resp, err := base.RoundTrip(clone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}
