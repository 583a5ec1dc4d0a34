package config

import "time"

// Config holds pmboard configuration.
type Config struct {
	Address           string        `json:"address" yaml:"address"`
	ReadTimeout       time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxHeaderBytes    int           `json:"max_header_bytes" yaml:"max_header_bytes"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	// BackendURL is the base URL of the upstream REST backend.
	BackendURL     string        `json:"backend_url" yaml:"backend_url"`
	AuthScheme     string        `json:"auth_scheme" yaml:"auth_scheme"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	PageSize       int           `json:"page_size" yaml:"page_size"`
	TaskPageSize   int           `json:"task_page_size" yaml:"task_page_size"`

	SessionStore  string        `json:"session_store" yaml:"session_store"`
	SessionName   string        `json:"session_name" yaml:"session_name"`
	SessionKey    string        `json:"session_key" yaml:"session_key"`
	SessionTTL    time.Duration `json:"session_ttl" yaml:"session_ttl"`
	SecureCookies bool          `json:"secure_cookies" yaml:"secure_cookies"`
	DatabaseURL   string        `json:"database_url" yaml:"database_url"`

	SuggestionCacheSize int      `json:"suggestion_cache_size" yaml:"suggestion_cache_size"`
	CORSOrigins         []string `json:"cors_origins" yaml:"cors_origins"`
	Tracing             bool     `json:"tracing" yaml:"tracing"`
}

// Auth schemes for the upstream Authorization header.
const (
	AuthSchemeRaw    = "raw"
	AuthSchemeBearer = "bearer"
)

// Session store kinds.
const (
	SessionMemory   = "memory"
	SessionCookie   = "cookie"
	SessionPostgres = "postgres"
)

// Default returns safe defaults.
func Default() Config {
	return Config{
		Address:             ":8080",
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        20 * time.Second,
		IdleTimeout:         60 * time.Second,
		ReadHeaderTimeout:   5 * time.Second,
		ShutdownTimeout:     10 * time.Second,
		MaxHeaderBytes:      1 << 20,
		LogLevel:            "info",
		LogFormat:           "text",
		BackendURL:          "http://localhost:5000",
		AuthScheme:          AuthSchemeRaw,
		RequestTimeout:      15 * time.Second,
		PageSize:            20,
		TaskPageSize:        5,
		SessionStore:        SessionMemory,
		SessionName:         "pmboard_session",
		SessionTTL:          12 * time.Hour,
		SuggestionCacheSize: 256,
	}
}
