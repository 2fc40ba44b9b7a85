package middlewares

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/devportal/internal/metrics"
)

// WithMetrics instrumenta requests con contadores y latencia Prometheus.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			metrics.RecordRequest(r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}
