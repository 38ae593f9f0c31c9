package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caredocs/caredocs/internal/ctxkeys"
	"github.com/caredocs/caredocs/internal/service"
	"github.com/caredocs/caredocs/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login checks the credentials and sets the session cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	err = validation.ValidateEmail(email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}

	user, err := h.authService.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			slog.WarnContext(r.Context(), "password login failed", "email", email)
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.ErrorContext(r.Context(), "login failed", "error", err, "email", email)
		writeError(w, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	token, expiresAt, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to generate JWT", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	h.authService.SetJWTCookie(w, token, expiresAt)

	slog.InfoContext(r.Context(), "user logged in with password", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      userResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Caller(r.Context())

	user, err := h.userService.ByID(r.Context(), caller.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load current user", "error", err, "user_id", caller.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword replaces the signed-in user's password.
// POST /api/account/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Caller(r.Context())

	var req changePasswordRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		writeError(w, http.StatusBadRequest, "All password fields are required")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "New passwords do not match")
		return
	}

	err = h.userService.UpdatePassword(r.Context(), caller.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		slog.WarnContext(r.Context(), "password update failed", "error", err, "user_id", caller.ID)
		switch {
		case errors.Is(err, service.ErrInvalidCurrentPassword):
			writeError(w, http.StatusBadRequest, "Current password is incorrect")
		case errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update password")
		}
		return
	}

	slog.InfoContext(r.Context(), "password updated", "user_id", caller.ID)
	w.WriteHeader(http.StatusNoContent)
}
