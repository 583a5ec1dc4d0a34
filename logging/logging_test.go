package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "warn", Format: "json", Output: &buf, Service: "pmboard"})

	logger.Info("dropped")
	logger.Warn("kept", slog.String("resource", "developers"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected one json record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "kept" || record["service"] != "pmboard" || record["resource"] != "developers" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("unexpected level mapping")
	}
}
