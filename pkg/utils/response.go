package utils

import (
	"net/http"

	"github.com/goccy/go-json"
)

// WriteJSON encodes data straight to the response writer. Encoding failures
// after the header is written can only be logged, not reported.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteError renders the stable {error_code, message} error body used across
// the API.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, map[string]string{"error_code": code, "message": message})
}
