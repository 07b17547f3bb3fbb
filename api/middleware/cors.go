package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/vallyhouse/vally-backend/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local storefront dev
	"https://vallyhouse.com",
	"https://www.vallyhouse.com",
	"https://admin.vallyhouse.com",
}

// CORS returns middleware applying the configured allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
