package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/irgordon/keyward/api/internal/api/httputil"
	"github.com/irgordon/keyward/api/internal/api/middleware"
	"github.com/irgordon/keyward/api/internal/core/domain"
	"github.com/irgordon/keyward/api/internal/core/services"
)

// envelope is the response shape every handler in this package writes.
type envelope struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type sessionData struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

var errEmptyBody = errors.New("request body is required")

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger *slog.Logger) bool {
	if r.Body == nil || r.ContentLength == 0 {
		httputil.HandleBadRequest(w, errEmptyBody, logger)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.HandleBadRequest(w, errors.New("invalid JSON payload"), logger)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		httputil.HandleError(w, err, logger)
		return false
	}
	return true
}

// currentUser fetches the account placed by the authentication gate.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.UnauthorizedResponse)
		return nil, false
	}
	return user, true
}

// ==============================================================================
// The Handler Struct (Dependency Injection)
// ==============================================================================

type AuthHandler struct {
	Service *services.AuthService
	Logger  *slog.Logger
}

func NewAuthHandler(service *services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		Service: service,
		Logger:  logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req, h.Logger) {
		return
	}

	user, token, err := h.Service.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleError(w, err, h.Logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, envelope{
		Message: "registration successful",
		Data:    sessionData{User: user, Token: token},
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req, h.Logger) {
		return
	}

	user, token, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.HandleError(w, err, h.Logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, envelope{
		Message: "login successful",
		Data:    sessionData{User: user, Token: token},
	})
}

// Me handles GET /api/auth/me and GET /api/auth/profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Data: user})
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req, h.Logger) {
		return
	}

	updated, err := h.Service.UpdateProfile(r.Context(), user, services.ProfileUpdate{
		Email:    req.Email,
		Nickname: req.Nickname,
	})
	if err != nil {
		httputil.HandleError(w, err, h.Logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, envelope{Message: "profile updated", Data: updated})
}

// ChangePassword handles PUT /api/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req, h.Logger) {
		return
	}

	if err := h.Service.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		httputil.HandleError(w, err, h.Logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, envelope{Message: "password changed"})
}

// Logout handles POST /api/auth/logout. Sessions are stateless: the client
// discards its token and it lapses at expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Message: "logged out"})
}
