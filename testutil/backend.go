package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Call records one request received by a fake backend.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          map[string]any
}

// Backend is a scripted stand-in for the upstream REST backend.
type Backend struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]http.HandlerFunc{}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Handle scripts a handler for "METHOD /path".
func (b *Backend) Handle(method, path string, handler http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = handler
}

// JSON scripts a fixed JSON response for "METHOD /path".
func (b *Backend) JSON(method, path string, status int, payload any) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, payload)
	})
}

// WriteJSON writes payload as a JSON response, for scripted handlers.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Calls returns a copy of the recorded requests.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount returns how many requests hit "METHOD /path".
func (b *Backend) CallCount(method, path string) int {
	count := 0
	for _, call := range b.Calls() {
		if call.Method == method && call.Path == path {
			count++
		}
	}
	return count
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	call := Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
		}
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	handler, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}
