package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/magpress/authserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRows = []string{"id", "username", "email", "role", "password_hash", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func TestGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userRows).
			AddRow(1, "alice", nil, "editor", "hash", now, now))

	user, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Nil(t, user.Email)
	assert.Equal(t, "editor", user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	email := "alice@example.com"

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRows).
			AddRow(1, "alice", email, "admin", "hash", now, now))

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, email, *user.Email)
	assert.True(t, user.IsAdmin())
}

func TestCreateMapsUniqueViolations(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"username", "users_username_key", ErrDuplicateUsername},
		{"email", "users_email_key", ErrDuplicateEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectQuery("INSERT INTO users").
				WillReturnError(&pq.Error{Code: "23505", Constraint: tc.constraint})

			_, err := repo.Create(context.Background(), types.User{
				Username:     "alice",
				Role:         types.RoleEditor,
				PasswordHash: "hash",
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateAssignsID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	user, err := repo.Create(context.Background(), types.User{
		Username:     "alice",
		Role:         types.RoleEditor,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), types.User{ID: 42, Username: "ghost", Role: types.RoleEditor, PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.Update(context.Background(), types.User{ID: 1, Username: "alice", Role: types.RoleEditor, PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), 1))
}

func TestDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 42), ErrNotFound)
}

func TestListNoFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id OFFSET \$1 LIMIT \$2`).
		WithArgs(0, 10).
		WillReturnRows(sqlmock.NewRows(userRows).
			AddRow(1, "alice", nil, "editor", "hash", now, now).
			AddRow(2, "bob", "bob@example.com", "admin", "hash", now, now))

	users, total, err := repo.List(context.Background(), ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithRoleAndSearch(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM users WHERE role = \$1 AND \(username ILIKE \$2 OR email ILIKE \$2\)`).
		WithArgs("editor", "%wri%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE role = \$1 AND \(username ILIKE \$2 OR email ILIKE \$2\) ORDER BY id OFFSET \$3 LIMIT \$4`).
		WithArgs("editor", "%wri%", 10, 10).
		WillReturnRows(sqlmock.NewRows(userRows).
			AddRow(11, "writer_one", nil, "editor", "hash", now, now))

	users, total, err := repo.List(context.Background(), ListFilter{
		Offset: 10,
		Limit:  10,
		Role:   "editor",
		Search: "wri",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "writer_one", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
