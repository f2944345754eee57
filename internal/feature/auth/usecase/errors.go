// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"

	"blog_backend/internal/shared/timeout"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned by Login for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnavailable is returned when the user store did not answer in time.
	ErrUnavailable = timeout.ErrUnavailable
)
