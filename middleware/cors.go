package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the dashboard SPA origins to call the gateway with cookies.
// It is plain net/http middleware and is installed with App.UseHTTP.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", RedirectHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
