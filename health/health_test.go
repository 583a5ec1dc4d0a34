package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRegistryHandlerOK(t *testing.T) {
	reg := New(WithService("pmboard"))
	reg.Add("process", func(ctx context.Context) error {
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	reg.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Service != "pmboard" || report.Ready || len(report.Checks) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRegistryReadyFail(t *testing.T) {
	reg := New(WithTimeout(10 * time.Millisecond))
	reg.AddReady("sessions", func(ctx context.Context) error {
		return errors.New("down")
	})
	reg.AddReady("backend", func(ctx context.Context) error {
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	reg.ReadyHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Checks[0].Name != "backend" || report.Checks[1].Status != "fail" {
		t.Fatalf("expected sorted checks with sessions failing, got %+v", report.Checks)
	}
}

func TestCheckTimeout(t *testing.T) {
	reg := New(WithTimeout(10 * time.Millisecond))
	reg.AddReady("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	_, status := reg.Ready(context.Background())
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected timeout to fail readiness, got %d", status)
	}
}

func TestUpstreamCheck(t *testing.T) {
	up := httptest.NewServer(http.NotFoundHandler())
	defer up.Close()
	if err := Upstream(up.Client(), up.URL)(context.Background()); err != nil {
		t.Fatalf("expected 404 to count as up: %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	if err := Upstream(down.Client(), down.URL)(context.Background()); err == nil {
		t.Fatalf("expected 502 to fail")
	}
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	if err := Ping(pinger{})(context.Background()); err != nil {
		t.Fatalf("expected ok ping: %v", err)
	}
	if err := Ping(pinger{err: errors.New("refused")})(context.Background()); err == nil {
		t.Fatalf("expected ping failure")
	}
	if err := Ping(nil)(context.Background()); err == nil {
		t.Fatalf("expected error for missing database")
	}
}
