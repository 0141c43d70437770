package plasma

import (
	"strings"

	"plasma/internal/domain"
)

// Declaration describes a component: its parameters in order plus optional
// overrides for the published name and description. Build one with Declare.
type Declaration struct {
	name        string
	description string
	uri         string
	mimeType    string
	params      []domain.ParameterDescriptor
}

// ParamOption adjusts a parameter descriptor.
type ParamOption func(*domain.ParameterDescriptor)

// Required marks a parameter as mandatory.
func Required() ParamOption {
	return func(p *domain.ParameterDescriptor) {
		p.Required = true
	}
}

// Description documents a parameter in the published input schema.
func Description(text string) ParamOption {
	return func(p *domain.ParameterDescriptor) {
		p.Description = strings.TrimSpace(text)
	}
}

func Declare() *Declaration {
	return &Declaration{}
}

// Param declares a parameter. Declaring the same name again replaces the
// earlier descriptor and keeps its position.
func (d *Declaration) Param(name string, typ TypeTag, opts ...ParamOption) *Declaration {
	param := domain.ParameterDescriptor{
		Name: name,
		Type: domain.NormalizeTypeTag(string(typ)),
	}
	for _, opt := range opts {
		opt(&param)
	}
	for i := range d.params {
		if d.params[i].Name == name {
			d.params[i] = param
			return d
		}
	}
	d.params = append(d.params, param)
	return d
}

// Describe sets the description, which otherwise comes from the leading
// comment of the component's source file.
func (d *Declaration) Describe(text string) *Declaration {
	d.description = strings.TrimSpace(text)
	return d
}

// Name overrides the name derived from the type.
func (d *Declaration) Name(name string) *Declaration {
	d.name = strings.TrimSpace(name)
	return d
}

// URI sets the address of a resource. URIs containing {var} placeholders
// are published as templates whose variables fill the parameters of the
// same name.
func (d *Declaration) URI(uri string) *Declaration {
	d.uri = strings.TrimSpace(uri)
	return d
}

// MIME sets the content type of a resource.
func (d *Declaration) MIME(mimeType string) *Declaration {
	d.mimeType = strings.TrimSpace(mimeType)
	return d
}

// Parameters returns a copy of the declared parameters in order.
func (d *Declaration) Parameters() []domain.ParameterDescriptor {
	if d == nil {
		return nil
	}
	return append([]domain.ParameterDescriptor(nil), d.params...)
}
