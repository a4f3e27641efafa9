package http

import (
	"encoding/json"
	"net/http"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

// WriteJSONError writes a JSON error response with the given message and
// status code. The body is {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps typed domain errors onto HTTP status codes.
// Validation errors and not-found/conflict errors carry their own message;
// anything else is an internal error and only the fallback message leaks out.
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error, fallback string) {
	switch {
	case domain.IsValidation(err):
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case domain.IsNotFound(err):
		WriteJSONError(w, err.Error(), http.StatusNotFound)
	case domain.IsConflict(err):
		WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		log.WithField("error", err.Error()).Error(fallback)
		WriteJSONError(w, fallback, http.StatusInternalServerError)
	}
}
