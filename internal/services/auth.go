package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magpress/authserver/internal/auth"
	"github.com/magpress/authserver/internal/store"
	"github.com/magpress/authserver/types"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter store.ListFilter) ([]types.User, int, error)
}

// AuthService orchestrates registration, authentication, token refresh,
// and user management. Every operation validates before mutating and
// raises failures as *Error values.
type AuthService struct {
	repo   UserRepository
	hasher *auth.Hasher
	codec  *auth.Codec
}

func NewAuthService(repo UserRepository, hasher *auth.Hasher, codec *auth.Codec) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, codec: codec}
}

// RegisterInput carries a registration request. Email and Role are
// optional; Role defaults to editor.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateUsername(in.Username); err != nil {
		return types.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return types.User{}, err
	}
	if in.Email != "" {
		if err := validateEmail(in.Email); err != nil {
			return types.User{}, err
		}
	}
	role := in.Role
	if role == "" {
		role = types.RoleEditor
	}
	if err := validateRole(role); err != nil {
		return types.User{}, err
	}

	if err := s.checkUsernameFree(ctx, in.Username); err != nil {
		return types.User{}, err
	}
	if in.Email != "" {
		if err := s.checkEmailFree(ctx, in.Email); err != nil {
			return types.User{}, err
		}
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user := types.User{
		Username:     in.Username,
		Role:         role,
		PasswordHash: hashed,
	}
	if in.Email != "" {
		user.Email = &in.Email
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, mapStoreError(err)
	}
	return created, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown usernames and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (types.User, auth.TokenPair, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, auth.TokenPair{}, ErrAuthenticationFailed
		}
		return types.User{}, auth.TokenPair{}, fmt.Errorf("loading user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return types.User{}, auth.TokenPair{}, ErrAuthenticationFailed
	}

	pair, err := s.codec.IssuePair(user.ID, user.Username, user.Role)
	if err != nil {
		return types.User{}, auth.TokenPair{}, fmt.Errorf("issuing tokens: %w", err)
	}
	return user, pair, nil
}

// Refresh verifies a refresh token and issues a new access token. The
// refresh token itself is not rotated; it is returned unchanged so the
// client-facing payload shape stays stable.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return auth.TokenPair{}, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return auth.TokenPair{}, ErrInvalidToken
	}

	access, err := s.codec.IssueAccess(userID, claims.Username, claims.Role)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issuing access token: %w", err)
	}
	return auth.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.codec.AccessTTL().Seconds()),
	}, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

// ProfilePatch carries a partial self-service profile update. Nil fields
// are left unchanged. Role is deliberately absent: a user cannot change
// their own role.
type ProfilePatch struct {
	Username *string
	Email    *string
}

// UpdateProfile applies a patch to the caller's own profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, patch ProfilePatch) (types.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if err := s.applyIdentityPatch(ctx, &user, patch.Username, patch.Email); err != nil {
		return types.User{}, err
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, mapStoreError(err)
	}
	return updated, nil
}

// AdminPatch carries a partial admin-initiated user update. Nil fields
// are left unchanged.
type AdminPatch struct {
	Username *string
	Email    *string
	Role     *string
}

// UpdateUserByAdmin applies a patch to any user, including role changes.
func (s *AuthService) UpdateUserByAdmin(ctx context.Context, userID int, patch AdminPatch) (types.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if err := s.applyIdentityPatch(ctx, &user, patch.Username, patch.Email); err != nil {
		return types.User{}, err
	}
	if patch.Role != nil {
		if err := validateRole(*patch.Role); err != nil {
			return types.User{}, err
		}
		user.Role = *patch.Role
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, mapStoreError(err)
	}
	return updated, nil
}

// ChangePassword replaces the user's password hash after verifying the
// current password and the new password's confirmation.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, current, newPassword, confirm string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidPassword
	}
	if newPassword != confirm {
		return validationError("Passwords do not match")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.PasswordHash = hashed

	if _, err := s.repo.Update(ctx, user); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// Pagination describes a page of a listing.
type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

// ListUsers returns a page of users, optionally filtered by role and a
// case-insensitive username/email substring search. Ordering is by id
// ascending so paging is deterministic.
func (s *AuthService) ListUsers(ctx context.Context, page, limit int, role, search string) ([]types.User, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if role != "" {
		if err := validateRole(role); err != nil {
			return nil, Pagination{}, err
		}
	}

	users, total, err := s.repo.List(ctx, store.ListFilter{
		Offset: (page - 1) * limit,
		Limit:  limit,
		Role:   role,
		Search: search,
	})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("listing users: %w", err)
	}

	return users, Pagination{
		CurrentPage:  page,
		TotalPages:   (total + limit - 1) / limit,
		TotalItems:   total,
		ItemsPerPage: limit,
	}, nil
}

// DeleteUser hard-deletes a user. Deleting the calling account is always
// rejected, even for a valid admin.
func (s *AuthService) DeleteUser(ctx context.Context, userID, callerID int) error {
	if userID == callerID {
		return ErrCannotDeleteSelf
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// applyIdentityPatch validates and applies username/email changes,
// checking uniqueness only for values that actually change.
func (s *AuthService) applyIdentityPatch(ctx context.Context, user *types.User, username, email *string) error {
	if username != nil {
		next := strings.TrimSpace(*username)
		if err := validateUsername(next); err != nil {
			return err
		}
		if next != user.Username {
			if err := s.checkUsernameFree(ctx, next); err != nil {
				return err
			}
			user.Username = next
		}
	}
	if email != nil {
		next := strings.ToLower(strings.TrimSpace(*email))
		if err := validateEmail(next); err != nil {
			return err
		}
		if user.Email == nil || next != *user.Email {
			if err := s.checkEmailFree(ctx, next); err != nil {
				return err
			}
			user.Email = &next
		}
	}
	return nil
}

func (s *AuthService) checkUsernameFree(ctx context.Context, username string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return duplicateFieldError("username", "Username already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("checking username: %w", err)
	}
	return nil
}

func (s *AuthService) checkEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return duplicateFieldError("email", "Email already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("checking email: %w", err)
	}
	return nil
}

// mapStoreError converts constraint-level uniqueness failures, which can
// slip past the pre-write checks under concurrency, into the same
// validation errors the checks produce.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		return duplicateFieldError("username", "Username already exists")
	case errors.Is(err, store.ErrDuplicateEmail):
		return duplicateFieldError("email", "Email already exists")
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}
