package domain

import "errors"

var (
	// ErrValidation marks missing or malformed required fields.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated marks an absent or invalid bearer credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden marks a request by an authenticated user against a
	// resource owned by someone else, where existence is not a secret.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers both "record absent" and "record not yours" for
	// jobs, so a non-owner cannot probe for existence.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken marks a registration against an existing username.
	ErrUsernameTaken = errors.New("username already taken")
)
