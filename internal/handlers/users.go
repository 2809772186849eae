package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/magpress/authserver/internal/services"
	"github.com/magpress/authserver/types"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// UserHandler provides the admin user-management endpoints.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler constructs a UserHandler with the provided service.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// UserRouter registers admin user-management routes on the given router.
// Every route requires an authenticated admin.
func UserRouter(r chi.Router, authService *services.AuthService, guard *Guard) {
	handler := NewUserHandler(authService)

	r.Use(guard.RequireAuth, guard.RequireAdmin)
	r.Get("/", handler.ListUsers)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

type AdminUpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// UserListData is the payload returned by the user listing.
type UserListData struct {
	Users      []types.User        `json:"users"`
	Pagination services.Pagination `json:"pagination"`
}

// ListUsers returns a paginated, optionally filtered user listing.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, services.CodeValidationError, err.Error(), nil)
		return
	}

	role := strings.TrimSpace(r.URL.Query().Get("role"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	users, pagination, err := h.authService.ListUsers(r.Context(), page, limit, role, search)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", UserListData{Users: users, Pagination: pagination})
}

// GetUser returns a single user by id.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, services.CodeValidationError, "Invalid user id", nil)
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", UserData{User: user})
}

// UpdateUser applies an admin update to any user, including role changes.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, services.CodeValidationError, "Invalid user id", nil)
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, services.CodeValidationError, "Invalid request body", nil)
		return
	}

	user, err := h.authService.UpdateUserByAdmin(r.Context(), userID, services.AdminPatch{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User updated successfully", UserData{User: user})
}

// DeleteUser hard-deletes a user. Self-deletion is rejected.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := UserFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, services.CodeInvalidToken, "Could not validate credentials", nil)
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, services.CodeValidationError, "Invalid user id", nil)
		return
	}

	if err := h.authService.DeleteUser(r.Context(), userID, caller.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

func parseUserID(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "userID"))
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

func parsePagination(r *http.Request) (page, limit int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("invalid page")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("invalid limit")
		}
	}

	return page, limit, nil
}
