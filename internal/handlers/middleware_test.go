package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/magpress/authserver/internal/auth"
	"github.com/magpress/authserver/internal/handlers"
	"github.com/magpress/authserver/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalAuth(t *testing.T) {
	repo := newMemRepo()
	hasher := auth.NewHasher(4)
	codec := auth.NewCodec("test-secret", 30*time.Minute, 7*24*time.Hour)
	authService := services.NewAuthService(repo, hasher, codec)
	guard := handlers.NewGuard(codec, authService)

	user, err := authService.Register(context.Background(), services.RegisterInput{
		Username: "alice", Password: "pass1234",
	})
	require.NoError(t, err)

	var sawIdentity bool
	router := chi.NewRouter()
	router.With(guard.OptionalAuth).Get("/articles", func(w http.ResponseWriter, r *http.Request) {
		_, idErr := handlers.UserFromContext(r.Context())
		sawIdentity = idErr == nil
		w.WriteHeader(http.StatusOK)
	})

	// Anonymous request proceeds with no identity.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawIdentity)

	// Valid token attaches the user.
	token, err := codec.IssueAccess(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawIdentity)

	// Garbage token still proceeds, just without identity.
	req = httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawIdentity)
}
