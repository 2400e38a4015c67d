package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface keeps the transport layer ignorant of
// individual error types.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a node or user was not found in the
	// addressed partition.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates an owner mismatch on a node access
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrIO           = errors.New("i/o failure")
	ErrInternal     = errors.New("internal error")
)

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// ConflictError represents a structural conflict: a duplicate insert, a move
// that would make a node its own ancestor, or a bulk request whose top-level
// nodes do not share a parent.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (node, folder, file)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// IOError represents a blob read or write failure. Unlike Forbidden or
// Conflict, an IOError is retryable by the caller as-is.
type IOError struct {
	Message string
	Err     error // underlying cause, may be nil
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *IOError) StatusCode() int {
	return http.StatusBadGateway
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is() to match against ErrIO
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
