package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MetricsRecorder receives HTTP request observations.
type MetricsRecorder interface {
	RecordHTTPRequest(method, path, status string, duration time.Duration)
	IncActiveConnections()
	DecActiveConnections()
}

// Metrics returns a middleware that records request counts, durations
// and in-flight connections. The /metrics endpoint itself is skipped so
// scrapes don't observe themselves.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/metrics") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder.IncActiveConnections()
			defer recorder.DecActiveConnections()

			wrapped := &metricsResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			record := func() {
				recorder.RecordHTTPRequest(
					r.Method,
					normalizePath(r.URL.Path),
					strconv.Itoa(wrapped.statusCode),
					time.Since(start),
				)
			}

			// A panicking handler still counts, as a 500.
			defer func() {
				if err := recover(); err != nil {
					wrapped.statusCode = http.StatusInternalServerError
					record()
					panic(err)
				}
			}()

			next.ServeHTTP(wrapped, r)
			record()
		})
	}
}

// metricsResponseWriter captures the status code written by the handler.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// normalizePath collapses UUID and numeric path segments to :id so the
// path label stays low-cardinality.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			parts[i] = ":id"
			continue
		}
		if _, err := strconv.Atoi(part); err == nil && len(part) > 0 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
