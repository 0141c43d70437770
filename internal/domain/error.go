package domain

import (
	"errors"
	"fmt"
)

// ErrorClass says who is at fault for an error, which decides how it
// surfaces: a CLI exit code, a tool error result or a JSON-RPC code.
type ErrorClass string

const (
	ClassInvalidInput ErrorClass = "invalid_input"
	ClassNotFound     ErrorClass = "not_found"
	ClassConflict     ErrorClass = "conflict"
	ClassPrecondition ErrorClass = "precondition"
	ClassInternal     ErrorClass = "internal"
)

var (
	ErrNoComponents      = errors.New("no components registered")
	ErrComponentNotFound = errors.New("component not found")
	ErrNotProject        = errors.New("not a plasma project directory")
	ErrMissingEnv        = errors.New("required environment variable not set")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// Error is a classified failure of operation Op.
type Error struct {
	Class ErrorClass
	Op    string
	Msg   string
	Cause error
}

// Errorf builds an Error whose message is formatted like fmt.Errorf. A %w
// verb in format becomes the Cause.
func Errorf(class ErrorClass, op, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Class: class, Op: op, Msg: wrapped.Error(), Cause: errors.Unwrap(wrapped)}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return e.Op + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// MissingParameterError reports a required parameter absent at construction.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("Missing required parameter: %s", e.Name)
}

// CoercionError reports a value that cannot be converted to its declared type.
// Param is empty when the engine is called outside of construction.
type CoercionError struct {
	Param string
	Value any
	Type  TypeTag
}

func (e *CoercionError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("Invalid %s: %v", e.Type, e.Value)
	}
	return fmt.Sprintf("Invalid %s for parameter %s: %v", e.Type, e.Param, e.Value)
}

// UnresolvedSourceError is recovered by the metadata synthesizer and never
// surfaced to callers.
type UnresolvedSourceError struct {
	Identity string
	Path     string
}

func (e *UnresolvedSourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("no source location for %s", e.Identity)
	}
	return fmt.Sprintf("source location %s for %s not readable", e.Path, e.Identity)
}

// DuplicateRegistrationError is tolerated as a no-op by the registry.
type DuplicateRegistrationError struct {
	Kind     Kind
	Identity string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%s %s already registered", e.Kind, e.Identity)
}

// Classify finds the class of err. Explicit Error values win over the
// sentinel and typed errors of this package.
func Classify(err error) (ErrorClass, bool) {
	if err == nil {
		return "", false
	}
	var (
		classified *Error
		missing    *MissingParameterError
		coercion   *CoercionError
		duplicate  *DuplicateRegistrationError
	)
	if errors.As(err, &classified) && classified.Class != "" {
		return classified.Class, true
	}
	if errors.As(err, &missing) || errors.As(err, &coercion) {
		return ClassInvalidInput, true
	}
	if errors.As(err, &duplicate) {
		return ClassConflict, true
	}
	switch {
	case errors.Is(err, ErrComponentNotFound):
		return ClassNotFound, true
	case errors.Is(err, ErrInvalidConfig):
		return ClassInvalidInput, true
	case errors.Is(err, ErrNoComponents), errors.Is(err, ErrNotProject), errors.Is(err, ErrMissingEnv):
		return ClassPrecondition, true
	}
	return "", false
}
