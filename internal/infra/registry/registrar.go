// Package registry collects registered components and publishes them as
// immutable capability snapshots.
package registry

import (
	"context"
	"errors"
	"sync"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
)

// Registration binds a declaration to the handler that executes it.
type Registration struct {
	Declaration domain.ComponentDeclaration
	Handler     component.Handler
}

// Source enumerates registrations. Sources are enumerated at scan time, after
// all component code has loaded.
type Source interface {
	Name() string
	Registrations(ctx context.Context) ([]Registration, error)
}

// Registrar accumulates compiled registrations in registration order.
type Registrar struct {
	mu      sync.Mutex
	entries []Registration
	seen    map[domain.ComponentIdentity]struct{}
}

// Default receives registrations made from init functions.
var Default = NewRegistrar()

func NewRegistrar() *Registrar {
	return &Registrar{seen: make(map[domain.ComponentIdentity]struct{})}
}

// Register records reg. A repeated identity leaves the registrar unchanged and
// returns a DuplicateRegistrationError.
func (r *Registrar) Register(reg Registration) error {
	decl := reg.Declaration
	if decl.Identity.IsZero() {
		return domain.Errorf(domain.ClassInvalidInput, "register", "component identity is required")
	}
	if decl.QualifiedName == "" {
		return domain.Errorf(domain.ClassInvalidInput, "register", "component name is required")
	}
	if reg.Handler == nil {
		return domain.Errorf(domain.ClassInvalidInput, "register", "component handler is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[decl.Identity]; ok {
		return &domain.DuplicateRegistrationError{Kind: decl.Kind, Identity: decl.Identity.String()}
	}
	r.seen[decl.Identity] = struct{}{}
	reg.Declaration = decl.Clone()
	r.entries = append(r.entries, reg)
	return nil
}

// IsDuplicate reports whether err came from registering an identity twice.
func IsDuplicate(err error) bool {
	var dup *domain.DuplicateRegistrationError
	return errors.As(err, &dup)
}

func (r *Registrar) Name() string {
	return "compiled"
}

func (r *Registrar) Registrations(context.Context) ([]Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Registration, len(r.entries))
	for i, reg := range r.entries {
		reg.Declaration = reg.Declaration.Clone()
		out[i] = reg
	}
	return out, nil
}

func (r *Registrar) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// StaticSource serves a fixed registration list.
type StaticSource struct {
	Label   string
	Entries []Registration
}

func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s StaticSource) Registrations(context.Context) ([]Registration, error) {
	return append([]Registration(nil), s.Entries...), nil
}
