package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/georgemallousis-design/MyWarehouse/internal/auth"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// UsersHandler handles user management endpoints. The store performs no
// authorization itself; the hierarchy policy lives here: an actor manages
// only accounts strictly below their own level, except admin1 accounts,
// which also manage each other. Nobody manages their own account through
// these endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// managementAllowed enforces the hierarchy policy against a target user and
// role, writing the error response itself when the actor is rejected.
func managementAllowed(w http.ResponseWriter, r *http.Request, targetUsername, targetRole string) bool {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return false
	}
	if claims.Username == targetUsername {
		jsonError(w, http.StatusForbidden, "cannot manage your own account here")
		return false
	}
	if !model.CanManage(claims.Role, targetRole) {
		jsonError(w, http.StatusForbidden, "insufficient permissions for target role")
		return false
	}
	return true
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if !managementAllowed(w, r, req.Username, req.Role) {
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, salt, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, hash, salt, req.Role)
	if err != nil {
		storeError(w, err, "failed to create user")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user created", "user", claims.Username,
		"new_user", req.Username, "role", req.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// UpdateRole handles PUT /api/users/{username}/role. The actor must be able
// to manage both the current and the requested role.
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	target, err := store.GetUser(r.Context(), h.DB, username)
	if err != nil {
		storeError(w, err, "failed to get user")
		return
	}
	if target == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if !managementAllowed(w, r, target.Username, target.Role) {
		return
	}
	if !managementAllowed(w, r, target.Username, req.Role) {
		return
	}

	if err := store.UpdateUserRole(r.Context(), h.DB, username, req.Role); err != nil {
		storeError(w, err, "failed to update role")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user role updated", "user", claims.Username,
		"target_user", username, "new_role", req.Role)
	updated, _ := store.GetUser(r.Context(), h.DB, username)
	jsonResponse(w, http.StatusOK, updated)
}

// ResetPassword handles PUT /api/users/{username}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := store.GetUser(r.Context(), h.DB, username)
	if err != nil {
		storeError(w, err, "failed to get user")
		return
	}
	if target == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if !managementAllowed(w, r, target.Username, target.Role) {
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, salt, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := store.UpdateUserPassword(r.Context(), h.DB, username, hash, salt); err != nil {
		storeError(w, err, "failed to reset password")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user password reset", "user", claims.Username, "target_user", username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{username}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	target, err := store.GetUser(r.Context(), h.DB, username)
	if err != nil {
		storeError(w, err, "failed to get user")
		return
	}
	if target == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if !managementAllowed(w, r, target.Username, target.Role) {
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, username); err != nil {
		storeError(w, err, "failed to delete user")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("user deleted", "user", claims.Username, "deleted_user", username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
