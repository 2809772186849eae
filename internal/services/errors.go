package services

// ErrorCode identifies a class of domain failure. Handlers translate
// codes to HTTP statuses; the service never touches a transport format.
type ErrorCode string

const (
	CodeValidationError      ErrorCode = "VALIDATION_ERROR"
	CodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	CodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	CodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	CodeAccessDenied         ErrorCode = "ACCESS_DENIED"
	CodeCannotDeleteSelf     ErrorCode = "CANNOT_DELETE_SELF"
	CodeInvalidPassword      ErrorCode = "INVALID_PASSWORD"
)

// Error is a typed domain failure raised at the service boundary.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ErrAuthenticationFailed is the single login failure. The same value is
// returned whether the username is unknown or the password is wrong, so
// a caller cannot probe which usernames exist.
var ErrAuthenticationFailed = &Error{
	Code:    CodeAuthenticationFailed,
	Message: "Invalid username or password",
}

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = &Error{
	Code:    CodeInvalidToken,
	Message: "Token is invalid or expired",
}

// ErrUserNotFound is returned when the referenced user does not exist.
var ErrUserNotFound = &Error{
	Code:    CodeUserNotFound,
	Message: "User not found",
}

// ErrCannotDeleteSelf rejects an admin deleting their own account.
var ErrCannotDeleteSelf = &Error{
	Code:    CodeCannotDeleteSelf,
	Message: "Cannot delete your own account",
}

// ErrInvalidPassword rejects a password change whose current password
// does not verify.
var ErrInvalidPassword = &Error{
	Code:    CodeInvalidPassword,
	Message: "Current password is incorrect",
}

func validationError(message string) *Error {
	return &Error{Code: CodeValidationError, Message: message}
}

func duplicateFieldError(field, message string) *Error {
	return &Error{
		Code:    CodeValidationError,
		Message: message,
		Details: map[string]string{
			"field": field,
			"code":  "DUPLICATE_VALUE",
		},
	}
}
