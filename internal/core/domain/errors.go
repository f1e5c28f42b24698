package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is deliberately generic: it never says whether the
	// username, the password or the role was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMissingToken     = errors.New("access denied, no token provided")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInsufficientRole = errors.New("access denied, insufficient privileges")

	ErrUserNotFound     = errors.New("user not found")
	ErrCustomerNotFound = errors.New("customer not found")

	ErrEmptySearchQuery = errors.New("search query is required")
)

// ValidationError reports missing or malformed input. Details lists one
// message per offending field when several failed at once.
type ValidationError struct {
	Field   string
	Msg     string
	Details []string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// NewValidationError builds a ValidationError for field (may be empty).
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// ConflictError reports a duplicate value on a unique field.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	entity := e.Entity
	if entity == "" {
		entity = "record"
	}
	return fmt.Sprintf("a %s with this %s already exists", entity, e.Field)
}
