package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Authentication Errors (1xxx)
	ErrCodeInvalidCredentials  ErrorCode = "AUTH_1001"
	ErrCodeInvalidRefreshToken ErrorCode = "AUTH_1002"
	ErrCodeRefreshTokenRevoked ErrorCode = "AUTH_1003"
	ErrCodeInvalidOldPassword  ErrorCode = "AUTH_1004"
	ErrCodeUnauthorized        ErrorCode = "AUTH_1005"

	// Resource Errors (2xxx)
	ErrCodeUserNotFound       ErrorCode = "RES_2001"
	ErrCodeEmailAlreadyExists ErrorCode = "RES_2002"

	// Validation Errors (3xxx)
	ErrCodeInvalidRequest ErrorCode = "VALID_3001"

	// Server Errors (5xxx)
	ErrCodeInternal ErrorCode = "SERVER_5001"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match two AppErrors by code
func (e *AppError) Is(target error) bool {
	var other *AppError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

func New(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Common error constructors.
// InvalidCredentials deliberately takes no detail: unknown email and a wrong
// password must be indistinguishable to the caller.
func InvalidCredentials() *AppError {
	return New(ErrCodeInvalidCredentials, "Invalid email or password", "", nil)
}

func InvalidRefreshToken() *AppError {
	return New(ErrCodeInvalidRefreshToken, "Invalid refresh token", "", nil)
}

func RefreshTokenRevoked() *AppError {
	return New(ErrCodeRefreshTokenRevoked, "Refresh token revoked", "", nil)
}

func InvalidOldPassword() *AppError {
	return New(ErrCodeInvalidOldPassword, "Invalid old password", "", nil)
}

func Unauthorized(details string) *AppError {
	return New(ErrCodeUnauthorized, "Unauthorized", details, nil)
}

func UserNotFound(userID string) *AppError {
	return New(ErrCodeUserNotFound, "User not found", fmt.Sprintf("User ID: %s", userID), nil)
}

func EmailAlreadyExists(email string) *AppError {
	return New(ErrCodeEmailAlreadyExists, "User with this email already exists", fmt.Sprintf("Email: %s", email), nil)
}

func InvalidRequest(details string) *AppError {
	return New(ErrCodeInvalidRequest, "Invalid request", details, nil)
}

func Internal(details string, cause error) *AppError {
	return New(ErrCodeInternal, "Internal server error", details, cause)
}

// HTTPStatus maps an error to the transport-level status code
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case ErrCodeInvalidCredentials, ErrCodeInvalidRefreshToken,
		ErrCodeRefreshTokenRevoked, ErrCodeInvalidOldPassword, ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeUserNotFound:
		return http.StatusNotFound
	case ErrCodeEmailAlreadyExists:
		return http.StatusConflict
	case ErrCodeInvalidRequest:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
