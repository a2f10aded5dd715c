package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tells the translator which wire format an AuthError is rendered with.
type Kind int

const (
	// KindDomain is a structured error raised by protected business logic.
	KindDomain Kind = iota
	// KindMissingToken means the gate found no token on the request.
	KindMissingToken
	// KindInvalidToken means the presented token failed to decode.
	KindInvalidToken
	// KindInvalidCredentials means the login entry rejected the credentials.
	KindInvalidCredentials
)

const (
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidCredentials = "invalid_credentials"
	CodeTooManyAttempts    = "too_many_attempts"
	CodeInternal           = "internal_error"
)

// AuthError standardizes authentication and authorization failures.
type AuthError struct {
	HTTPStatus  int
	Code        string
	Description string
	Kind        Kind
	Err         error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.Err)
	}
	return e.Code + ": " + e.Description
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind and code, so sentinel comparisons work
// against freshly constructed values.
func (e *AuthError) Is(target error) bool {
	var other *AuthError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Code == other.Code
}

// NewAuthError constructs a domain AuthError raised by protected logic.
func NewAuthError(status int, code, description string) *AuthError {
	return &AuthError{HTTPStatus: status, Code: code, Description: description, Kind: KindDomain}
}

func NewMissingToken() *AuthError {
	return &AuthError{
		HTTPStatus:  http.StatusForbidden,
		Code:        CodeMissingToken,
		Description: "Missing Token",
		Kind:        KindMissingToken,
	}
}

func NewInvalidToken(err error) *AuthError {
	return &AuthError{
		HTTPStatus:  http.StatusForbidden,
		Code:        CodeInvalidToken,
		Description: "Invalid token",
		Kind:        KindInvalidToken,
		Err:         err,
	}
}

func NewInvalidCredentials() *AuthError {
	return &AuthError{
		HTTPStatus:  http.StatusUnauthorized,
		Code:        CodeInvalidCredentials,
		Description: "Could not verify your login",
		Kind:        KindInvalidCredentials,
	}
}

func NewTooManyAttempts() *AuthError {
	return NewAuthError(http.StatusTooManyRequests, CodeTooManyAttempts, "too many failed login attempts")
}

func NewInternalError(err error) *AuthError {
	return &AuthError{
		HTTPStatus:  http.StatusInternalServerError,
		Code:        CodeInternal,
		Description: "internal server error",
		Kind:        KindDomain,
		Err:         err,
	}
}

// ToAuthError converts generic errors to AuthError. Unknown errors become a 500.
func ToAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return NewInternalError(err)
}
