package controllers

import (
	"encoding/json"
	"net/http"

	"folio/app/logger"
	"folio/app/middleware"
	"folio/app/models"
	"folio/app/repositories"
	"folio/app/services"

	"github.com/pkg/errors"
)

// Helper functions for consistent response handling

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, message string, status int) {
	middleware.WriteError(w, status, message)
}

// sendServiceError maps a service error to a status code. fallback is the
// message for unexpected failures, which are logged.
func sendServiceError(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		sendError(w, "Post not found", http.StatusNotFound)
	case errors.As(err, &verr):
		sendError(w, verr.Message, http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidInput):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repositories.ErrUnavailable):
		log.Error("%s: %v", fallback, err)
		sendError(w, "Storage unavailable", http.StatusServiceUnavailable)
	default:
		log.Error("%s: %v", fallback, err)
		sendError(w, fallback, http.StatusInternalServerError)
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &models.ValidationError{Message: "Invalid JSON: " + err.Error()}
	}
	return nil
}
