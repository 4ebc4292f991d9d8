package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/georgemallousis-design/MyWarehouse/internal/auth"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := auth.Authenticate(r.Context(), h.DB, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.Username, user.Role)
	if err != nil {
		slog.Error("generating token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusOK, loginResponse{
		Token: token, Username: user.Username, Role: user.Role,
	})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.Username)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash, user.Salt) {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, salt, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("hashing password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, user.Username, hash, salt); err != nil {
		storeError(w, err, "failed to update password")
		return
	}

	slog.Info("user changed own password", "user", user.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
