package repositories

import "errors"

// Storage error categories. Handlers and the central error handler branch on
// these with errors.Is.
var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidID         = errors.New("invalid id format")
	ErrDuplicateUsername = errors.New("username already taken")
)
