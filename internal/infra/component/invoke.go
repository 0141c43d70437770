// Package component constructs and runs registered components for a single
// invocation.
package component

import (
	"context"
	"errors"
	"fmt"

	"plasma/internal/domain"
)

// Handler executes a constructed component. The result shape depends on the kind.
type Handler func(ctx context.Context, params domain.Params) (any, error)

// PanicError reports a component body that panicked.
type PanicError struct {
	Component string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("component %s panicked: %v", e.Component, e.Value)
}

// Invoke constructs the parameter set and runs handler with it. Construction
// failures are returned unchanged so callers can tell them apart from
// execution failures.
func Invoke(ctx context.Context, decl domain.ComponentDeclaration, handler Handler, input map[string]any) (result any, params domain.Params, err error) {
	params, err = Construct(decl, input)
	if err != nil {
		return nil, domain.Params{}, err
	}
	if handler == nil {
		return nil, params, domain.Errorf(domain.ClassInternal, "component.Invoke", "%s %s has no handler", decl.Kind, decl.QualifiedName)
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = &PanicError{Component: decl.QualifiedName, Value: recovered}
		}
	}()
	result, err = handler(ctx, params)
	return result, params, err
}

// InputFailure names the construction failure behind err: "missing_parameter"
// or "invalid_value". Errors returned by a component body never match, even
// when classified as invalid input.
func InputFailure(err error) (string, bool) {
	var (
		missing  *domain.MissingParameterError
		coercion *domain.CoercionError
	)
	switch {
	case errors.As(err, &missing):
		return "missing_parameter", true
	case errors.As(err, &coercion):
		return "invalid_value", true
	default:
		return "", false
	}
}

// IsInvalidInput reports whether err came from construction.
func IsInvalidInput(err error) bool {
	_, ok := InputFailure(err)
	return ok
}
