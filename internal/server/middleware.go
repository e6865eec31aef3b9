package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Logging returns [Middleware] that logs each request's method, path and duration.
//
// The session stream on /sse stays open for the life of the connection, so its
// log line appears on disconnect.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
