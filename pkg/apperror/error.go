package apperror

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Sentinels carried in AppError.Err so callers can branch with errors.Is
// without comparing messages.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUpstream           = errors.New("upstream storage failure")
)

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrValidation)
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrValidation)
}

func DuplicateEmail() *AppError {
	return New(http.StatusBadRequest, "User already exists", ErrDuplicateEmail)
}

// InvalidCredentials is the same for an unknown email and a
// wrong password.
func InvalidCredentials() *AppError {
	return New(http.StatusBadRequest, "Invalid email or password", ErrInvalidCredentials)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, ErrUnauthenticated)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, ErrForbidden)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, ErrNotFound)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message, nil)
}

// Upstream wraps a failure of an external collaborator such as object storage.
func Upstream(message string, err error) *AppError {
	return New(http.StatusBadGateway, message, errors.Join(ErrUpstream, err))
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// Is reports whether err is an AppError carrying the given sentinel.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// StatusOf returns the HTTP status for err, 500 for anything that is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
