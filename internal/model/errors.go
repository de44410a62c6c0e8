package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")

	// Movie errors
	ErrMovieNotFound = errors.New("movie not found")
	ErrMissingTitle  = errors.New("movie title is required")
	ErrInvalidStatus = errors.New(`invalid status, use "watched" or "unwatched"`)
)
