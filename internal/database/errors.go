package database

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when a write would duplicate a user email.
	ErrEmailTaken = errors.New("email already in use")
)
