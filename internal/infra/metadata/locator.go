package metadata

import (
	"os"
	"path/filepath"

	"plasma/internal/domain"
)

// SourceLocator resolves the source file a component was declared in.
type SourceLocator interface {
	Locate(decl domain.ComponentDeclaration) (string, bool)
}

// SourceLocatorFunc adapts a function to SourceLocator.
type SourceLocatorFunc func(decl domain.ComponentDeclaration) (string, bool)

func (f SourceLocatorFunc) Locate(decl domain.ComponentDeclaration) (string, bool) {
	return f(decl)
}

// ProjectLocator resolves the recorded registration path first and falls
// back to <root>/app/<kind>s/<file> when the recorded path is gone, which is
// the case for binaries built elsewhere.
type ProjectLocator struct {
	Root string
}

func (l ProjectLocator) Locate(decl domain.ComponentDeclaration) (string, bool) {
	if decl.SourceLocation == "" {
		return "", false
	}
	if fileExists(decl.SourceLocation) {
		return decl.SourceLocation, true
	}
	if l.Root == "" {
		return "", false
	}
	candidate := filepath.Join(l.Root, domain.DefaultAppDir, decl.Kind.Dir(), filepath.Base(decl.SourceLocation))
	if fileExists(candidate) {
		return candidate, true
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
