// Package testutil holds helpers shared by handler and middleware tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/logging"
)

// Do executes a request against a handler.
func Do(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// MustStatus asserts the response status code.
func MustStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

// MustHeader asserts a response header value.
func MustHeader(t *testing.T, rec *httptest.ResponseRecorder, key, value string) {
	t.Helper()
	if got := rec.Header().Get(key); got != value {
		t.Fatalf("expected header %s=%q, got %q", key, value, got)
	}
}

// DecodeJSON decodes a JSON response into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

// MiddlewareCase describes a middleware test case.
type MiddlewareCase struct {
	Name       string
	Middleware []pmboard.Middleware
	Handler    pmboard.Handler
	Request    *http.Request
	Assert     func(t *testing.T, rec *httptest.ResponseRecorder, err error)
}

// RunMiddleware executes middleware with a handler and request.
func RunMiddleware(t *testing.T, middleware []pmboard.Middleware, handler pmboard.Handler, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	if req == nil {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
	}

	app := pmboard.New(pmboard.WithLogger(logging.Discard()))
	rec := httptest.NewRecorder()
	ctx := pmboard.NewContext(rec, req, app)

	h := handler
	if h == nil {
		h = func(*pmboard.Context) error { return nil }
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}

	err := h(ctx)
	return rec, err
}

// RunMiddlewareCases executes middleware test cases in a table-driven style.
func RunMiddlewareCases(t *testing.T, cases []MiddlewareCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			rec, err := RunMiddleware(t, tc.Middleware, tc.Handler, tc.Request)
			if tc.Assert != nil {
				tc.Assert(t, rec, err)
			}
		})
	}
}
