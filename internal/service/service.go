// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/scenevault/scenevault/internal/repository"
)

// Service errors.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect username/email or password")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrSceneNotFound      = errors.New("no scene saved for this user")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// invalidInput tags a validation error so callers can match ErrInvalidInput
// and still reach the *model.ValidationError.
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// storageError wraps a repository failure, surfacing ErrStorageUnavailable
// when the database could not be reached.
func storageError(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
