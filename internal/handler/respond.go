// Package handler provides HTTP handlers for the userhub API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/userhub-io/userhub/internal/domain"
	"github.com/userhub-io/userhub/internal/service"
)

// APIError is the JSON error payload returned for failed requests.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError sends a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(r),
			Details:   details,
		},
	})
}

// respondServiceError maps service and domain errors to HTTP responses.
// All authentication failures are presented identically to avoid
// user-enumeration leakage.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "User not found", nil)
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, r, http.StatusBadRequest, "email_taken", "Email already registered", nil)
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUserInactive):
		writeError(w, r, http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password", nil)
	case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidPassword):
		writeError(w, r, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}
