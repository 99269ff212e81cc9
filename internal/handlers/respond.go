package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/services"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Validation problems
// are the caller's fault; generation failures get their own status so the
// client can suggest a different prompt rather than a connectivity check.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrStaleGeneration):
		http.Error(w, err.Error(), http.StatusConflict)
	case apperr.IsGeneration(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case apperr.IsTransport(err) || apperr.IsStoreWrite(err):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		logger.Log.WithError(err).Error("Unhandled error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
