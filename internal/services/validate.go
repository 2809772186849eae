package services

import (
	"net/mail"
	"regexp"

	"github.com/magpress/authserver/types"
)

const (
	minPasswordLength = 4
	maxPasswordLength = 128
)

// usernameRe bounds usernames to 3-50 alphanumeric or underscore
// characters.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

func validateUsername(username string) *Error {
	if !usernameRe.MatchString(username) {
		return validationError("Username must be 3-50 characters of letters, digits, or underscore")
	}
	return nil
}

func validatePassword(password string) *Error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return validationError("Password must be between 4 and 128 characters")
	}
	return nil
}

func validateEmail(email string) *Error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationError("Invalid email address")
	}
	return nil
}

func validateRole(role string) *Error {
	if !types.ValidRole(role) {
		return validationError("Role must be either editor or admin")
	}
	return nil
}
