package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/goclaw/anima/pkg/api/response"
)

// Timeout returns a middleware that enforces request timeouts.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})

			go func() {
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				requestID := GetRequestID(r.Context())
				if requestID == "" {
					requestID = "unknown"
				}

				response.Error(w,
					http.StatusGatewayTimeout,
					response.ErrCodeGatewayTimeout,
					"Request timeout",
					requestID,
				)
			}
		})
	}
}
