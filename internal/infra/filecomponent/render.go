package filecomponent

import (
	"regexp"

	"plasma/internal/domain"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Render substitutes {{name}} placeholders with parameter values. Unknown
// names and absent optional parameters render as the empty string.
func Render(tmpl string, params domain.Params) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		return params.String(name)
	})
}
