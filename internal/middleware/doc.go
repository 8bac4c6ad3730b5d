// Package middleware holds the HTTP middleware shared by the compliance API:
// request logging, CORS, request body limits and Prometheus request counting.
// Each constructor returns a func(http.Handler) http.Handler so it can be
// passed straight to chi's Router.Use.
package middleware
