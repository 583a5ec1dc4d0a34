package httpclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Scheme selects how the session token is written to the Authorization
// header. One scheme applies to every endpoint of a deployment.
type Scheme string

const (
	// SchemeRaw sends the token verbatim.
	SchemeRaw Scheme = "raw"
	// SchemeBearer sends "Bearer <token>".
	SchemeBearer Scheme = "bearer"
)

// ParseScheme converts a configuration value. Empty means raw.
func ParseScheme(value string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(value))) {
	case "", SchemeRaw:
		return SchemeRaw, nil
	case SchemeBearer:
		return SchemeBearer, nil
	default:
		return "", errors.New("unknown auth scheme " + value)
	}
}

type tokenKey struct{}

// WithToken attaches the session token to ctx for AuthRoundTripper.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token attached by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// AuthRoundTripper writes the context token to the Authorization header.
// Requests without a token pass through untouched.
type AuthRoundTripper struct {
	Base   http.RoundTripper
	Scheme Scheme
}

// RoundTrip executes the request with the Authorization header set.
func (a *AuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := a.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req == nil {
		return nil, errors.New("request is nil")
	}

	token, ok := TokenFromContext(req.Context())
	if !ok {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	switch a.Scheme {
	case SchemeBearer:
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(clone)
	default:
		clone.Header.Set("Authorization", token)
	}
	return base.RoundTrip(clone)
}

// EnsureAuth returns client unchanged when its transport chain already
// writes the Authorization header, and otherwise a copy whose transport
// does. A nil client gets a default one.
func EnsureAuth(client *http.Client, scheme Scheme) *http.Client {
	if client == nil {
		options := DefaultClientOptions()
		options.AuthScheme = scheme
		return NewClient(options)
	}
	if hasAuth(client.Transport) {
		return client
	}
	wrapped := *client
	wrapped.Transport = &AuthRoundTripper{Base: client.Transport, Scheme: scheme}
	return &wrapped
}

func hasAuth(rt http.RoundTripper) bool {
	for rt != nil {
		switch t := rt.(type) {
		case *AuthRoundTripper:
			return true
		case *MetadataRoundTripper:
			rt = t.Base
		case *TracingRoundTripper:
			rt = t.Base
		default:
			return false
		}
	}
	return false
}
