package config

import (
	"errors"
	"net/url"
	"strings"
)

// Validate validates config values.
func Validate(cfg Config) error {
	var issues []string

	if cfg.ReadTimeout < 0 {
		issues = append(issues, "read_timeout must be >= 0")
	}
	if cfg.WriteTimeout < 0 {
		issues = append(issues, "write_timeout must be >= 0")
	}
	if cfg.IdleTimeout < 0 {
		issues = append(issues, "idle_timeout must be >= 0")
	}
	if cfg.ReadHeaderTimeout < 0 {
		issues = append(issues, "read_header_timeout must be >= 0")
	}
	if cfg.ShutdownTimeout < 0 {
		issues = append(issues, "shutdown_timeout must be >= 0")
	}
	if cfg.MaxHeaderBytes < 0 {
		issues = append(issues, "max_header_bytes must be >= 0")
	}

	if cfg.LogLevel != "" && !validLogLevel(cfg.LogLevel) {
		issues = append(issues, "log_level must be one of debug|info|warn|error")
	}
	if cfg.LogFormat != "" && !validLogFormat(cfg.LogFormat) {
		issues = append(issues, "log_format must be one of text|json")
	}

	if u, err := url.Parse(cfg.BackendURL); cfg.BackendURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, "backend_url must be an absolute URL")
	}
	switch strings.ToLower(cfg.AuthScheme) {
	case "", AuthSchemeRaw, AuthSchemeBearer:
	default:
		issues = append(issues, "auth_scheme must be one of raw|bearer")
	}
	if cfg.RequestTimeout < 0 {
		issues = append(issues, "request_timeout must be >= 0")
	}
	if cfg.PageSize < 0 || cfg.TaskPageSize < 0 {
		issues = append(issues, "page sizes must be >= 0")
	}
	if cfg.SuggestionCacheSize < 0 {
		issues = append(issues, "suggestion_cache_size must be >= 0")
	}

	switch strings.ToLower(cfg.SessionStore) {
	case "", SessionMemory:
	case SessionCookie:
		if len(cfg.SessionKey) < 16 {
			issues = append(issues, "session_key must be at least 16 bytes for the cookie store")
		}
	case SessionPostgres:
		if cfg.DatabaseURL == "" {
			issues = append(issues, "database_url is required for the postgres store")
		}
	default:
		issues = append(issues, "session_store must be one of memory|cookie|postgres")
	}

	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validLogFormat(format string) bool {
	switch strings.ToLower(format) {
	case "text", "json":
		return true
	default:
		return false
	}
}
