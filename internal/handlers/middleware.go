package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/magpress/authserver/internal/auth"
	"github.com/magpress/authserver/internal/services"
	"github.com/magpress/authserver/types"
)

// Guard derives the authenticated identity from a bearer token and
// enforces role requirements on protected routes.
type Guard struct {
	codec       *auth.Codec
	authService *services.AuthService
}

func NewGuard(codec *auth.Codec, authService *services.AuthService) *Guard {
	return &Guard{codec: codec, authService: authService}
}

// RequireAuth verifies the access token, loads the subject user, and
// attaches it to the request context. Requests without a valid access
// token fail with 401.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticate(r)
		if err != nil {
			var svcErr *services.Error
			if errors.As(err, &svcErr) && svcErr.Code == services.CodeUserNotFound {
				// The token subject no longer exists; still an
				// authentication failure, not a 404.
				writeError(w, http.StatusUnauthorized, svcErr.Code, svcErr.Message, nil)
				return
			}
			writeError(w, http.StatusUnauthorized, services.CodeInvalidToken, "Could not validate credentials", nil)
			return
		}

		ctx := context.WithValue(r.Context(), contextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated users without the admin role.
// It must run after RequireAuth.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := UserFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, services.CodeInvalidToken, "Could not validate credentials", nil)
			return
		}
		if !user.IsAdmin() {
			writeError(w, http.StatusForbidden, services.CodeAccessDenied, "Insufficient permissions", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuth attaches the authenticated user when a valid access token
// is presented and proceeds without identity otherwise.
func (g *Guard) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, err := g.authenticate(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), contextUserKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) authenticate(r *http.Request) (types.User, error) {
	tokenString, err := bearerToken(r)
	if err != nil {
		return types.User{}, err
	}

	claims, err := g.codec.Verify(tokenString, auth.TokenTypeAccess)
	if err != nil {
		return types.User{}, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return types.User{}, err
	}

	return g.authService.GetUser(r.Context(), userID)
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization header")
	}
	return token, nil
}
