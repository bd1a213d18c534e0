package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a private type so context keys cannot collide.
type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDHeader carries the request ID in both directions.
const requestIDHeader = "X-Request-ID"

// RequestID returns a middleware that propagates the caller's request
// ID, minting one when the header is absent. The ID lands in the
// request context and echoes back on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			w.Header().Set(requestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID extracts the request ID from context, or "" when the
// middleware did not run.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
