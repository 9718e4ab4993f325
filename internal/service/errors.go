package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate or invalid transition)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when credentials are missing or wrong
	ErrUnauthorized = errors.New("unauthorized")

	// ErrExpired is returned when a public token is past its expiry
	ErrExpired = errors.New("link has expired")

	// ErrInvalidTransition is returned when a status move is not in the transition table
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUsernameTaken is returned when registering with an existing username
	ErrUsernameTaken = errors.New("username already taken")

	// ErrAlreadySigned is returned when signing a contract a second time
	ErrAlreadySigned = errors.New("contract already signed")

	// ErrDeletionBlocked is returned when a project's status forbids deletion
	ErrDeletionBlocked = errors.New("project status does not allow deletion")

	// ErrUserContextRequired is returned when user context is not available
	ErrUserContextRequired = errors.New("user context required")
)
