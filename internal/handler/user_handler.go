package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/userhub-io/userhub/internal/domain"
	"github.com/userhub-io/userhub/internal/service"
)

// UserHandler handles user management endpoints.
type UserHandler struct {
	users    *service.UserService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: newValidator(),
		logger:   logger.With().Str("handler", "users").Logger(),
	}
}

// newValidator builds a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// createUserRequest is the payload for POST /users/.
type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// updateUserRequest is the payload for PUT /users/{id}.
// Absent fields are left unchanged.
type updateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

// userResponse is the external representation of a user.
// The password hash is never included.
type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// listUsersResponse is the payload for GET /users/.
type listUsersResponse struct {
	Users []userResponse `json:"users"`
	Total int64          `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

// fieldError describes a single failed validation rule.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// decodeAndValidate decodes the JSON body into out and runs validation.
// On failure it writes the error response and returns false.
func (h *UserHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Invalid JSON body", nil)
		return false
	}

	if err := h.validate.Struct(out); err != nil {
		var fields []fieldError
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
		}
		writeError(w, r, http.StatusBadRequest, "validation_error", "Request validation failed", fields)
		return false
	}

	return true
}

// Create handles POST /users/.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// List handles GET /users/?skip=&limit=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, ok := queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	out, err := h.users.List(r.Context(), service.ListUsersInput{Skip: skip, Limit: limit})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	users := make([]userResponse, 0, len(out.Users))
	for _, u := range out.Users {
		users = append(users, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, listUsersResponse{
		Users: users,
		Total: out.TotalCount,
		Skip:  out.Skip,
		Limit: out.Limit,
	})
}

// GetByID handles GET /users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// GetByEmail handles GET /users/email/{email}.
func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), id, service.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID extracts and parses the {id} path parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "User ID must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_request", name+" must be a non-negative integer", nil)
		return 0, false
	}
	return v, true
}
