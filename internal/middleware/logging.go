package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/metrics"
)

// statusRecorder wraps http.ResponseWriter to capture status and size.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

// Logging logs every request and records it in the HTTP metrics.
// The route label is the matched mux pattern, so ids never reach Prometheus.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		dur := time.Since(start)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(dur.Seconds())

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", dur.Milliseconds(),
			"size", rec.size,
		}
		switch {
		case status >= 500:
			slog.Error("HTTP error", attrs...)
		case status >= 400:
			slog.Warn("HTTP error", attrs...)
		default:
			slog.Info("HTTP ok", attrs...)
		}
	})
}
