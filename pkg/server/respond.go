package server

import (
	"encoding/json"
	"net/http"
)

// errorBody is the error payload carried by every non-2xx JSON response.
type errorBody struct {
	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Details lists individual validation failures when the request was
	// rejected for more than one reason.
	Details []string `json:"details,omitempty"`
}

// errorResponse is the envelope for error payloads.
type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// The status line is already written, so an encode failure can only be
	// logged by the caller's middleware, not reported to the client.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: errorBody{Message: message}})
}

// writeErrorDetails writes a JSON error response carrying per-field
// validation messages.
func writeErrorDetails(w http.ResponseWriter, statusCode int, message string, details []string) {
	writeJSON(w, statusCode, errorResponse{Error: errorBody{Message: message, Details: details}})
}
