package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound signals a missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrProjectNotFound signals a missing project.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound signals a missing task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAlreadyExists signals a duplicate resource (e.g. email already registered).
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized signals a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden signals an authorization failure on a valid credential.
	ErrForbidden = errors.New("forbidden")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
	// ErrAssistantUnavailable signals an AI assistant provider failure.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)
