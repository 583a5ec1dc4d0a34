package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/logging"
)

type testTracer struct {
	starts   int
	statuses []int
}

func (t *testTracer) Start(ctx *pmboard.Context) (context.Context, func(status int, err error)) {
	t.starts++
	return ctx.Request.Context(), func(status int, _ error) {
		t.statuses = append(t.statuses, status)
	}
}

func TestTraceWithOptionsSkipPath(t *testing.T) {
	tracer := &testTracer{}
	app := pmboard.New(pmboard.WithLogger(logging.Discard()))
	app.Use(TraceWithOptions(TraceOptions{Tracer: tracer, SkipPaths: []string{"/skip"}}))

	app.GET("/skip", func(ctx *pmboard.Context) error {
		return ctx.Text(http.StatusOK, "ok")
	})
	app.GET("/ok", func(ctx *pmboard.Context) error {
		return ctx.Text(http.StatusOK, "ok")
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/skip", nil))
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	if tracer.starts != 1 {
		t.Fatalf("expected 1 trace start, got %d", tracer.starts)
	}
}

func TestTraceRecordsErrorStatus(t *testing.T) {
	tracer := &testTracer{}
	app := pmboard.New(pmboard.WithLogger(logging.Discard()))
	app.Use(Trace(tracer))
	app.GET("/upstream", func(*pmboard.Context) error {
		return apperr.BadGateway("backend down", nil)
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/upstream", nil))

	if len(tracer.statuses) != 1 || tracer.statuses[0] != http.StatusBadGateway {
		t.Fatalf("expected 502 recorded, got %v", tracer.statuses)
	}
}
