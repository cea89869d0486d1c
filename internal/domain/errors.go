package domain

import "errors"

var (
	// ErrInternalServerError is thrown when an internal server error occurs
	ErrInternalServerError = errors.New("internal server error")

	// ErrNotFound is thrown when a requested resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is thrown when a resource already exists
	ErrConflict = errors.New("resource already exists")

	// ErrBadParamInput is thrown when request parameters are invalid
	ErrBadParamInput = errors.New("invalid parameters")

	// ErrUnauthorized is thrown when no valid session accompanies a request
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired is thrown when a session token has passed its expiry
	ErrSessionExpired = errors.New("session expired")
)
