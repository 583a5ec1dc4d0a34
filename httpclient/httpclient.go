// Package httpclient builds the http.Client used for every upstream call.
// Each request is a single attempt bounded by a timeout; nothing is retried.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 15 * time.Second

// ClientOptions configures the upstream HTTP client.
type ClientOptions struct {
	Timeout           time.Duration
	Transport         http.RoundTripper
	AuthScheme        Scheme
	PropagateMetadata bool
	// TracerProvider enables client spans when set.
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
}

// DefaultClientOptions returns a baseline client configuration.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:           DefaultTimeout,
		AuthScheme:        SchemeRaw,
		PropagateMetadata: true,
	}
}

// NewClient builds an http.Client. The transport chain, outermost first, is
// tracing, metadata propagation, Authorization header, base transport.
func NewClient(options ClientOptions) *http.Client {
	transport := options.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	transport = &AuthRoundTripper{Base: transport, Scheme: options.AuthScheme}
	if options.PropagateMetadata {
		transport = &MetadataRoundTripper{Base: transport}
	}
	if options.TracerProvider != nil {
		transport = NewTracingRoundTripper(transport, options.TracerProvider, options.Propagator)
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
