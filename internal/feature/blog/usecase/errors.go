// Package usecase implements the business logic for the blog feature.
package usecase

import (
	"errors"

	"blog_backend/internal/shared/timeout"
)

var (
	// ErrPostNotFound is returned when no post exists for the requested ID.
	ErrPostNotFound = errors.New("post not found")

	// ErrForbidden is returned when a user tries to modify a post they do not own.
	ErrForbidden = errors.New("not the author of this post")

	// ErrUnavailable is returned when the store did not answer in time.
	ErrUnavailable = timeout.ErrUnavailable
)
