package plasma

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
	"plasma/internal/infra/metadata"
	"plasma/internal/infra/registry"
)

type toolPointer[T any] interface {
	*T
	binder
	Call(ctx context.Context) (any, error)
}

type promptPointer[T any] interface {
	*T
	binder
	Messages(ctx context.Context) ([]Message, error)
}

type resourcePointer[T any] interface {
	*T
	binder
	Read(ctx context.Context) (any, error)
}

// RegisterTool attaches decl to the tool type T. Call it from an init
// function in the file that defines T.
func RegisterTool[T any, P toolPointer[T]](decl *Declaration) {
	register[T](registry.Default, domain.KindTool, decl, callerFile(), func(ctx context.Context, params domain.Params) (any, error) {
		tool := P(new(T))
		tool.bind(params)
		return tool.Call(ctx)
	})
}

// RegisterPrompt attaches decl to the prompt type T.
func RegisterPrompt[T any, P promptPointer[T]](decl *Declaration) {
	register[T](registry.Default, domain.KindPrompt, decl, callerFile(), func(ctx context.Context, params domain.Params) (any, error) {
		prompt := P(new(T))
		prompt.bind(params)
		return prompt.Messages(ctx)
	})
}

// RegisterResource attaches decl to the resource type T. Without a URI the
// resource is published at plasma://resources/<name>.
func RegisterResource[T any, P resourcePointer[T]](decl *Declaration) {
	register[T](registry.Default, domain.KindResource, decl, callerFile(), func(ctx context.Context, params domain.Params) (any, error) {
		resource := P(new(T))
		resource.bind(params)
		return resource.Read(ctx)
	})
}

// register panics on malformed declarations since they are programming
// errors surfacing at init. Registering a type twice keeps the first.
func register[T any](registrar *registry.Registrar, kind domain.Kind, decl *Declaration, file string, handler component.Handler) {
	if decl == nil {
		decl = Declare()
	}
	typ := reflect.TypeFor[T]()
	name := decl.name
	if name == "" {
		name = metadata.QualifiedName(typ.Name(), kind)
	}

	declaration := domain.ComponentDeclaration{
		Kind:                kind,
		Identity:            domain.ComponentIdentity{Type: typ},
		QualifiedName:       name,
		Parameters:          decl.Parameters(),
		ExplicitDescription: decl.description,
		SourceLocation:      file,
	}
	if kind == domain.KindResource {
		declaration.URI = decl.uri
		if declaration.URI == "" {
			declaration.URI = domain.DefaultResourceURI(name)
		}
		declaration.MIMEType = decl.mimeType
	}

	err := registrar.Register(registry.Registration{Declaration: declaration, Handler: handler})
	if err != nil && !registry.IsDuplicate(err) {
		panic(fmt.Sprintf("plasma: register %s %s: %v", kind, typ, err))
	}
}

// callerFile is the file of whoever called the exported Register function.
func callerFile() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return filepath.Clean(file)
}
