package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is the prefix used by the CLI for environment overrides.
const EnvPrefix = "PMBOARD_"

// LoadFromEnv applies environment overrides with a prefix (e.g. PMBOARD_).
func LoadFromEnv(prefix string, base Config) Config {
	get := func(key string) string { return os.Getenv(prefix + key) }
	duration := func(key string, dst *time.Duration) {
		if value := get(key); value != "" {
			if d, err := time.ParseDuration(value); err == nil {
				*dst = d
			}
		}
	}
	integer := func(key string, dst *int) {
		if value := get(key); value != "" {
			if n, err := strconv.Atoi(value); err == nil {
				*dst = n
			}
		}
	}
	boolean := func(key string, dst *bool) {
		if value := get(key); value != "" {
			if enabled, err := strconv.ParseBool(value); err == nil {
				*dst = enabled
			}
		}
	}
	str := func(key string, dst *string) {
		if value := get(key); value != "" {
			*dst = value
		}
	}

	str("ADDRESS", &base.Address)
	duration("READ_TIMEOUT", &base.ReadTimeout)
	duration("WRITE_TIMEOUT", &base.WriteTimeout)
	duration("IDLE_TIMEOUT", &base.IdleTimeout)
	duration("READ_HEADER_TIMEOUT", &base.ReadHeaderTimeout)
	duration("SHUTDOWN_TIMEOUT", &base.ShutdownTimeout)
	integer("MAX_HEADER_BYTES", &base.MaxHeaderBytes)
	str("LOG_LEVEL", &base.LogLevel)
	str("LOG_FORMAT", &base.LogFormat)

	str("BACKEND_URL", &base.BackendURL)
	str("AUTH_SCHEME", &base.AuthScheme)
	duration("REQUEST_TIMEOUT", &base.RequestTimeout)
	integer("PAGE_SIZE", &base.PageSize)
	integer("TASK_PAGE_SIZE", &base.TaskPageSize)

	str("SESSION_STORE", &base.SessionStore)
	str("SESSION_NAME", &base.SessionName)
	str("SESSION_KEY", &base.SessionKey)
	duration("SESSION_TTL", &base.SessionTTL)
	boolean("SECURE_COOKIES", &base.SecureCookies)
	str("DATABASE_URL", &base.DatabaseURL)

	integer("SUGGESTION_CACHE_SIZE", &base.SuggestionCacheSize)
	if value := get("CORS_ORIGINS"); value != "" {
		var origins []string
		for _, origin := range strings.Split(value, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		base.CORSOrigins = origins
	}
	boolean("TRACING", &base.Tracing)

	return base
}
