package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewCORSHandler applies CORS headers for the dashboard frontends listed in
// allowedOrigins. Each entry is a full origin (scheme + host, no trailing slash).
// The API only exposes GET and POST; the request ID header is readable by the
// browser so support tickets can quote it.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         600,
	})
	return c.Handler
}
