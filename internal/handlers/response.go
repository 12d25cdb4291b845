package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error kinds returned in the "error" field of failed responses
const (
	ErrKindDataUnavailable  = "DataUnavailable"
	ErrKindMalformedData    = "MalformedData"
	ErrKindCategoryNotFound = "CategoryNotFound"
	ErrKindInternal         = "InternalError"
)

// ErrorResponse is the body of every non-200 response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response. The body is encoded before the status is
// sent, so an encoding failure yields a 500 instead of a truncated 200.
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	body, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to encode JSON response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: ErrKindInternal})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, kind string, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: kind}, logger)
}
