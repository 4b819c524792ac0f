package glreflect

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes reflection errors.
type ErrorKind uint8

const (
	// ErrUnsupportedType indicates the front-end reported a type the engine
	// does not know.
	ErrUnsupportedType ErrorKind = iota + 1

	// ErrMalformedName indicates a uniform name that does not follow the
	// container[index].member grammar.
	ErrMalformedName

	// ErrDuplicateName indicates two entities share a name in one namespace.
	ErrDuplicateName

	// ErrUnknownSize indicates a block member whose type has no size in
	// block memory.
	ErrUnknownSize

	// ErrBindingCollision indicates two resources explicitly claim the same
	// set and binding.
	ErrBindingCollision

	// ErrLimitExceeded indicates the program exceeds a resource limit.
	ErrLimitExceeded

	// ErrVersionMismatch indicates a reflection blob written by a different
	// format version.
	ErrVersionMismatch

	// ErrCorruptBlob indicates a reflection blob that cannot be decoded.
	ErrCorruptBlob
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrMalformedName:
		return "MalformedName"
	case ErrDuplicateName:
		return "DuplicateName"
	case ErrUnknownSize:
		return "UnknownSize"
	case ErrBindingCollision:
		return "BindingCollision"
	case ErrLimitExceeded:
		return "LimitExceeded"
	case ErrVersionMismatch:
		return "VersionMismatch"
	case ErrCorruptBlob:
		return "CorruptBlob"
	default:
		return "Unknown"
	}
}

// Error implements the error interface so a kind can be used as an
// errors.Is target:
//
//	if errors.Is(err, glreflect.ErrVersionMismatch) { ... }
func (k ErrorKind) Error() string {
	return "glreflect " + k.String()
}

// Error represents a reflection build or blob decoding error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Name is the attribute, uniform or block the error is about, if any.
	Name string

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("glreflect %s %q: %s", e.Kind, e.Name, e.Message)
	}
	return fmt.Sprintf("glreflect %s: %s", e.Kind, e.Message)
}

// Is reports whether target is e's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func newError(kind ErrorKind, name, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Name:    name,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsBlobError returns true if the error came from decoding a reflection blob.
func (e *Error) IsBlobError() bool {
	return e.Kind == ErrVersionMismatch || e.Kind == ErrCorruptBlob
}

// IsBuildError returns true if the error came from building reflection out
// of a compiled program.
func (e *Error) IsBuildError() bool {
	return !e.IsBlobError()
}

// IsStaleCache reports whether err means a cached reflection blob was written
// by another format version and the program must be reflected again.
func IsStaleCache(err error) bool {
	return errors.Is(err, ErrVersionMismatch)
}
