package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when a write violates the username
// uniqueness constraint.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrDuplicateEmail is returned when a write violates the email
// uniqueness constraint.
var ErrDuplicateEmail = errors.New("email already exists")
