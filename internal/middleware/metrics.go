package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hongminglow/storefront/internal/metrics"
)

// Metrics records in-flight and completed requests by route template.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		done := metrics.TrackServerRequest(r.Method, path)
		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)
		done(wrapped.statusCode)
	})
}
