package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dfagundes/huddle/internal/model"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// writeProviderError maps a single-meeting operation failure onto a status
// code: not-found becomes 404, a provider rejection keeps its upstream
// status, anything else is a 500 with the fallback message.
func writeProviderError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, model.ErrMeetingNotFound) {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}

	var providerErr *model.ProviderError
	if errors.As(err, &providerErr) && providerErr.StatusCode >= 400 {
		writeError(w, providerErr.StatusCode, fallback)
		return
	}

	writeError(w, http.StatusInternalServerError, fallback)
}
