// Package health serves the gateway's liveness and readiness reports.
// Readiness covers the dependencies a dashboard request needs: the upstream
// backend and, when configured, the session database.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/devmarvs/pmboard/logging"
)

// CheckFunc runs a health or readiness check.
type CheckFunc func(context.Context) error

// CheckResult reports a single check.
type CheckResult struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Report describes health status.
type Report struct {
	Status     string        `json:"status"`
	Service    string        `json:"service,omitempty"`
	Checks     []CheckResult `json:"checks"`
	DurationMS int64         `json:"duration_ms"`
	CheckedAt  time.Time     `json:"checked_at"`
	Ready      bool          `json:"ready"`
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeout bounds each check.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		r.timeout = timeout
	}
}

// WithService names the service in reports.
func WithService(name string) Option {
	return func(r *Registry) {
		r.service = name
	}
}

// WithLogger logs failing checks.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry stores liveness and readiness checks.
type Registry struct {
	mu      sync.RWMutex
	live    map[string]CheckFunc
	ready   map[string]CheckFunc
	timeout time.Duration
	service string
	logger  *slog.Logger
}

// New creates a Registry.
func New(options ...Option) *Registry {
	registry := &Registry{
		live:   make(map[string]CheckFunc),
		ready:  make(map[string]CheckFunc),
		logger: logging.Discard(),
	}
	for _, opt := range options {
		opt(registry)
	}
	return registry
}

// Add registers a liveness check.
func (r *Registry) Add(name string, check CheckFunc) {
	r.mu.Lock()
	r.live[name] = check
	r.mu.Unlock()
}

// AddReady registers a readiness check.
func (r *Registry) AddReady(name string, check CheckFunc) {
	r.mu.Lock()
	r.ready[name] = check
	r.mu.Unlock()
}

// Handler returns a handler for liveness checks.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		report, status := r.Live(req.Context())
		writeReport(w, report, status)
	})
}

// ReadyHandler returns a handler for readiness checks.
func (r *Registry) ReadyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		report, status := r.Ready(req.Context())
		writeReport(w, report, status)
	})
}

// Live runs the liveness checks.
func (r *Registry) Live(ctx context.Context) (Report, int) {
	return r.report(ctx, r.snapshot(false), false)
}

// Ready runs the readiness checks.
func (r *Registry) Ready(ctx context.Context) (Report, int) {
	return r.report(ctx, r.snapshot(true), true)
}

func (r *Registry) report(ctx context.Context, checks map[string]CheckFunc, ready bool) (Report, int) {
	start := time.Now()
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]CheckResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			result := runCheck(ctx, checks[name], r.timeout)
			result.Name = name
			results[i] = result
		}(i, name)
	}
	wg.Wait()

	status := http.StatusOK
	for _, result := range results {
		if result.Status != "ok" {
			status = http.StatusServiceUnavailable
			r.logger.Warn("health check failed", slog.String("check", result.Name), slog.String("error", result.Error))
		}
	}

	return Report{
		Status:     statusLabel(status),
		Service:    r.service,
		Checks:     results,
		DurationMS: time.Since(start).Milliseconds(),
		CheckedAt:  time.Now().UTC(),
		Ready:      ready && status == http.StatusOK,
	}, status
}

func runCheck(ctx context.Context, check CheckFunc, timeout time.Duration) CheckResult {
	if check == nil {
		return CheckResult{Status: "ok"}
	}

	checkCtx := ctx
	cancel := func() {}
	if timeout > 0 {
		checkCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	start := time.Now()
	err := check(checkCtx)
	result := CheckResult{DurationMS: time.Since(start).Milliseconds()}
	if err != nil {
		result.Status = "fail"
		result.Error = err.Error()
		return result
	}
	result.Status = "ok"
	return result
}

func (r *Registry) snapshot(ready bool) map[string]CheckFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source := r.live
	if ready {
		source = r.ready
	}
	checks := make(map[string]CheckFunc, len(source))
	for key, value := range source {
		checks[key] = value
	}
	return checks
}

func statusLabel(code int) string {
	if code >= http.StatusBadRequest {
		return "fail"
	}
	return "ok"
}

func writeReport(w http.ResponseWriter, report Report, status int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
