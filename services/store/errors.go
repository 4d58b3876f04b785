package store

import "errors"

var (
	// ErrNotFound indicates no row matched the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername indicates the username is already registered.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)
