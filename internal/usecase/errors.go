package usecase

import (
	"errors"

	"coffee-shop-api/pkg/utils"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account is not verified")
	ErrInvalidOrExpired   = errors.New("invalid or expired code")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided or are invalid")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
)

// ValidationError carries field-level input problems.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}
