package httpclient

import (
	"errors"
	"net/http"

	"github.com/devmarvs/pmboard"
)

// MetadataRoundTripper forwards the incoming request id and trace headers to
// the upstream backend.
type MetadataRoundTripper struct {
	Base http.RoundTripper
}

// RoundTrip executes the request with metadata propagation.
func (m *MetadataRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := m.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req == nil {
		return nil, errors.New("request is nil")
	}

	metadata := pmboard.RequestMetadataFromContext(req.Context())
	if metadata == (pmboard.RequestMetadata{}) {
		return base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	pmboard.InjectRequestMetadata(clone, metadata)
	return base.RoundTrip(clone)
}
