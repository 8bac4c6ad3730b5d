package middleware

import (
	"encoding/json"
	"net/http"
)

// NewMaxBodySizeHandler caps request bodies at limit bytes.
//
// A request that declares a larger Content-Length is rejected with 413 before
// the next handler runs. Otherwise the body is wrapped in http.MaxBytesReader,
// so a streamed body fails on read once it crosses the limit and the JSON
// decoder surfaces *http.MaxBytesError to the handler.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "request_too_large",
						"message": "request body too large",
					},
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
