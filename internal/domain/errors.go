package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates there is no authenticated user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the user lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
