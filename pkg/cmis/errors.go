package cmis

import (
	"errors"
	"fmt"
)

// Kind classifies a failure returned to protocol callers.
type Kind int

const (
	// KindRuntime is any unexpected failure from the store or an internal
	// invariant violation.
	KindRuntime Kind = iota

	// KindNotFound means an object, type or relationship could not be
	// resolved. Malformed identifiers map here too.
	KindNotFound

	// KindUnauthorized means the session lacks permission for the read.
	KindUnauthorized

	// KindInvalidArgument means a caller-supplied parameter violates a
	// precondition.
	KindInvalidArgument

	// KindNotSupported marks an operation this repository does not implement.
	KindNotSupported
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "objectNotFound"
	case KindUnauthorized:
		return "permissionDenied"
	case KindInvalidArgument:
		return "invalidArgument"
	case KindNotSupported:
		return "notSupported"
	default:
		return "runtime"
	}
}

// Error is the only error type that crosses the repository boundary.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrNotSupported    = &Error{Kind: KindNotSupported}
	ErrRuntime         = &Error{Kind: KindRuntime}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func NotSupported(operation string) *Error {
	return &Error{Kind: KindNotSupported, Message: operation + " is not supported"}
}

// Runtime wraps an unexpected failure.
func Runtime(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindRuntime, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the kind of err. Errors that are not *Error are Runtime.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRuntime
}
