package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/userhub-io/userhub/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	users    *service.UserService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users *service.UserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		validate: newValidator(),
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

// loginRequest is the payload for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login. No token is issued; on success the
// user representation is returned. Every failure mode maps to the same
// 401 so callers cannot probe which emails are registered.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		var fields []fieldError
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
		}
		writeError(w, r, http.StatusBadRequest, "validation_error", "Request validation failed", fields)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
