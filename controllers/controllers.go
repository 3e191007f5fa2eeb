package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitalong_server/models"
	"gitalong_server/services"
)

// respondJSON writes payload as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrDependencyMissing):
		status = http.StatusFailedDependency
	case services.IsTransient(err):
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// sessionFromRequest returns the session the auth middleware attached.
func sessionFromRequest(r *http.Request) (models.Session, bool) {
	return services.SessionFromContext(r.Context())
}
