package metadata

import (
	"regexp"
	"strings"

	"plasma/internal/domain"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z\d]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// QualifiedName derives the published name of a component from its type name:
// the kind suffix is stripped and the remainder is converted to snake case.
func QualifiedName(typeName string, kind domain.Kind) string {
	name := typeName
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.IndexByte(name, '['); idx >= 0 {
		name = name[:idx]
	}
	if suffix := kind.Suffix(); suffix != "" && name != suffix {
		name = strings.TrimSuffix(name, suffix)
	}
	return Underscore(name)
}

// Underscore converts CamelCase to snake_case, keeping acronyms together.
func Underscore(value string) string {
	out := acronymBoundary.ReplaceAllString(value, "${1}_${2}")
	out = wordBoundary.ReplaceAllString(out, "${1}_${2}")
	out = strings.NewReplacer("-", "_", " ", "_").Replace(out)
	return strings.ToLower(out)
}
