package domain

import (
	"reflect"
	"strings"
)

// TypeTag names the declared type of a parameter.
type TypeTag string

const (
	TypeInteger TypeTag = "integer"
	TypeFloat   TypeTag = "float"
	TypeBoolean TypeTag = "boolean"
	TypeString  TypeTag = "string"
	TypeArray   TypeTag = "array"
)

// NormalizeTypeTag lower-cases and trims a declared tag.
func NormalizeTypeTag(tag string) TypeTag {
	return TypeTag(strings.ToLower(strings.TrimSpace(tag)))
}

// SchemaType maps a tag to its JSON Schema type. Unknown tags only map when
// they already name a JSON Schema type.
func (t TypeTag) SchemaType() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case "number", "object", "null":
		return string(t)
	default:
		return ""
	}
}

type Kind string

const (
	KindTool     Kind = "tool"
	KindPrompt   Kind = "prompt"
	KindResource Kind = "resource"
)

// Kinds lists every component kind in publication order.
var Kinds = []Kind{KindPrompt, KindResource, KindTool}

// Suffix is the type-name suffix stripped when deriving a qualified name.
func (k Kind) Suffix() string {
	switch k {
	case KindTool:
		return "Tool"
	case KindPrompt:
		return "Prompt"
	case KindResource:
		return "Resource"
	default:
		return ""
	}
}

// Dir is the project directory holding components of this kind.
func (k Kind) Dir() string {
	return string(k) + "s"
}

func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(strings.TrimSuffix(value, "s")))) {
	case KindTool:
		return KindTool, true
	case KindPrompt:
		return KindPrompt, true
	case KindResource:
		return KindResource, true
	default:
		return "", false
	}
}

// CapabilityFlags tell the protocol layer which change notifications a kind supports.
type CapabilityFlags struct {
	ListChanged bool `json:"listChanged"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// CapabilitiesFor returns the static flags of a kind.
func CapabilitiesFor(kind Kind) CapabilityFlags {
	switch kind {
	case KindResource:
		return CapabilityFlags{ListChanged: true, Subscribe: true}
	case KindTool, KindPrompt:
		return CapabilityFlags{ListChanged: true}
	default:
		return CapabilityFlags{}
	}
}

type ServerCapabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
	Prompts   *PromptsCapability   `json:"prompts,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type PromptsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ParameterDescriptor declares one named parameter of a component.
type ParameterDescriptor struct {
	Name        string
	Type        TypeTag
	Description string
	Required    bool
}

// ComponentIdentity is the deduplication key of a component: the Go type for
// compiled components, the file path for file components. Version carries the
// content hash of file components so edited files miss metadata caches.
type ComponentIdentity struct {
	Type    reflect.Type
	Path    string
	Version string
}

func (id ComponentIdentity) String() string {
	if id.Type != nil {
		return id.Type.String()
	}
	return id.Path
}

func (id ComponentIdentity) IsZero() bool {
	return id.Type == nil && id.Path == ""
}

// ComponentDeclaration is the static descriptor attached to a component.
type ComponentDeclaration struct {
	Kind                Kind
	Identity            ComponentIdentity
	QualifiedName       string
	Parameters          []ParameterDescriptor
	ExplicitDescription string
	SourceLocation      string
	URI                 string
	MIMEType            string
}

// Clone copies the parameter table so callers cannot mutate a registered declaration.
func (d ComponentDeclaration) Clone() ComponentDeclaration {
	out := d
	out.Parameters = append([]ParameterDescriptor(nil), d.Parameters...)
	return out
}
