package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadProfileLayering(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.json")
	envPath := filepath.Join(dir, "env.yaml")
	secretsPath := filepath.Join(dir, "secrets.json")

	if err := os.WriteFile(basePath, []byte(`{"address":":8080","log_level":"info"}`), 0o600); err != nil {
		t.Fatalf("write base: %v", err)
	}
	if err := os.WriteFile(envPath, []byte("address: \":9090\"\nrequest_timeout: 3s\nbackend_url: http://api.internal:5000\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	if err := os.WriteFile(secretsPath, []byte(`{"log_level":"error"}`), 0o600); err != nil {
		t.Fatalf("write secrets: %v", err)
	}

	t.Setenv("PMBOARD_ADDRESS", ":7070")
	t.Setenv("PMBOARD_CORS_ORIGINS", "http://localhost:3000, https://board.example.com")

	cfg, err := LoadProfile(Profile{
		BasePath:    basePath,
		EnvPath:     envPath,
		SecretsPath: secretsPath,
		EnvPrefix:   EnvPrefix,
	})
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}

	if cfg.Address != ":7070" {
		t.Fatalf("expected address override, got %q", cfg.Address)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected log_level from secrets, got %q", cfg.LogLevel)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("expected request_timeout from yaml, got %v", cfg.RequestTimeout)
	}
	if cfg.BackendURL != "http://api.internal:5000" {
		t.Fatalf("expected backend_url from yaml, got %q", cfg.BackendURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://board.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadFromFileRejectsUnknownYAMLKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmboard.yml")
	if err := os.WriteFile(path, []byte("templates_dir: views\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFromFile(path, Default()); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestLoadProfileValidation(t *testing.T) {
	cfg := Default()
	cfg.ReadTimeout = -1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestValidateSessionAndBackend(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	cfg := Default()
	cfg.BackendURL = "not a url"
	cfg.AuthScheme = "basic"
	cfg.SessionStore = SessionCookie
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"backend_url", "auth_scheme", "session_key"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s issue in %q", want, err.Error())
		}
	}

	cfg = Default()
	cfg.SessionStore = SessionPostgres
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "database_url") {
		t.Fatalf("expected database_url issue, got %v", err)
	}
}

func TestTypedLoader(t *testing.T) {
	type sample struct {
		Name string `json:"name"`
	}

	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.json")
	if err := os.WriteFile(basePath, []byte(`{"name":"fromfile"}`), 0o600); err != nil {
		t.Fatalf("write base: %v", err)
	}

	loader := Loader[sample]{
		Defaults: func() sample { return sample{Name: "default"} },
		Validate: func(cfg sample) error {
			if cfg.Name == "" {
				return errors.New("name required")
			}
			return nil
		},
	}

	cfg, err := loader.Load(Profile{BasePath: basePath, EnvPath: filepath.Join(dir, "missing.json"), AllowMissing: true})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "fromfile" {
		t.Fatalf("expected name from file, got %q", cfg.Name)
	}
}
