// Package response provides the shared HTTP response envelope.
package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with the given status code and body.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; nothing useful left to do.
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// Error writes an error envelope with the given status code and details.
func Error(w http.ResponseWriter, statusCode int, code, message string, requestID string) {
	JSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ErrorWithDetails writes an error envelope with additional details.
func ErrorWithDetails(w http.ResponseWriter, statusCode int, code, message string, details map[string]any, requestID string) {
	JSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}
