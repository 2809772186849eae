package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/magpress/authserver/internal/services"
	"github.com/magpress/authserver/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// UserFromContext returns the authenticated user attached by the Guard.
func UserFromContext(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	if !ok {
		return types.User{}, errors.New("no authenticated user in context")
	}
	return user, nil
}

// APIResponse is the envelope every JSON body follows.
type APIResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, code services.ErrorCode, message string, details map[string]string) {
	writeJSON(w, status, APIResponse{
		Error:   string(code),
		Message: message,
		Details: details,
	})
}

// writeServiceError translates a service failure into the HTTP contract.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		writeError(w, statusForCode(svcErr.Code), svcErr.Code, svcErr.Message, svcErr.Details)
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.CodeValidationError, services.CodeCannotDeleteSelf, services.CodeInvalidPassword:
		return http.StatusBadRequest
	case services.CodeAuthenticationFailed, services.CodeInvalidToken:
		return http.StatusUnauthorized
	case services.CodeAccessDenied:
		return http.StatusForbidden
	case services.CodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Healthz reports service liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "healthy", nil)
}
