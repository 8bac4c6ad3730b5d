package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fleetcarbon/compliance-backend/internal/metrics"
)

// unmatchedRoute labels requests that no route pattern matched.
const unmatchedRoute = "unmatched"

// NewMetricsHandler counts every request by method, chi route pattern and
// status. The pattern is read after the handler runs, once chi has resolved
// it; raw paths are never used as labels.
func NewMetricsHandler(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequest(r.Method, route, status)
		})
	}
}
