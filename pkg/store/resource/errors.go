package resource

import "errors"

// StoreError is a domain error from resource store operations.
//
// The repository layer translates StoreError codes into protocol error
// kinds; stores never return protocol errors themselves.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the entity path or id related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// Is matches another *StoreError with the same code.
func (e *StoreError) Is(target error) bool {
	var t *StoreError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested entity, principal or relation
	// doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrPermissionDenied indicates the session principal may not read or
	// change the entity
	ErrPermissionDenied

	// ErrAuthFailed indicates unknown user or wrong password
	ErrAuthFailed

	// ErrAlreadyExists indicates a sibling with the same name exists
	ErrAlreadyExists

	// ErrNotFolder indicates a folder was expected
	ErrNotFolder

	// ErrInvalidArgument indicates invalid parameters were provided
	ErrInvalidArgument

	// ErrLocked indicates the entity is locked by another principal
	ErrLocked

	// ErrIOError indicates the backing storage failed
	ErrIOError

	// ErrSessionClosed indicates use of a session after Close
	ErrSessionClosed
)

// NewError creates a StoreError.
func NewError(code ErrorCode, message, path string) *StoreError {
	return &StoreError{Code: code, Message: message, Path: path}
}

// NotFound is shorthand for an ErrNotFound StoreError.
func NotFound(what, path string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: what + " not found", Path: path}
}

// CodeOf extracts the code of a StoreError. ok is false for other errors.
func CodeOf(err error) (code ErrorCode, ok bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// IsNotFound reports whether err is an ErrNotFound StoreError.
func IsNotFound(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrNotFound
}

// IsPermissionDenied reports whether err is a permission or authentication
// failure.
func IsPermissionDenied(err error) bool {
	code, ok := CodeOf(err)
	return ok && (code == ErrPermissionDenied || code == ErrAuthFailed)
}
