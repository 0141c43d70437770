// Package metadata derives the externally visible name, description and
// input schema of components.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"plasma/internal/domain"
)

// Synthesizer builds metadata documents and memoizes them per component
// identity. Concurrent first calls may compute the same document twice;
// the cached value is identical either way.
type Synthesizer struct {
	locator SourceLocator
	logger  *zap.Logger

	descriptions sync.Map
	documents    sync.Map
}

func NewSynthesizer(locator SourceLocator, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locator == nil {
		locator = ProjectLocator{}
	}
	return &Synthesizer{
		locator: locator,
		logger:  logger.Named("metadata"),
	}
}

// Synthesize returns the metadata document of decl. A non-nil error means the
// input schema did not resolve; the returned document is still usable.
func (s *Synthesizer) Synthesize(decl domain.ComponentDeclaration) (domain.MetadataDocument, error) {
	cacheable := !decl.Identity.IsZero()
	if cacheable {
		if cached, ok := s.documents.Load(decl.Identity); ok {
			return cloneDocument(cached.(domain.MetadataDocument)), nil
		}
	}

	doc := domain.MetadataDocument{
		Name:        decl.QualifiedName,
		Description: s.Description(decl),
		InputSchema: BuildInputSchema(decl.Parameters),
	}
	if err := ValidateInputSchema(doc.InputSchema); err != nil {
		return doc, fmt.Errorf("%s %s: %w", decl.Kind, decl.QualifiedName, err)
	}
	if cacheable {
		s.documents.Store(decl.Identity, cloneDocument(doc))
	}
	return cloneDocument(doc), nil
}

// Description returns the explicit description of decl or the leading comment
// of its source file, falling back to the placeholder.
func (s *Synthesizer) Description(decl domain.ComponentDeclaration) string {
	if decl.ExplicitDescription != "" {
		return decl.ExplicitDescription
	}
	cacheable := !decl.Identity.IsZero()
	if cacheable {
		if cached, ok := s.descriptions.Load(decl.Identity); ok {
			return cached.(string)
		}
	}

	description, err := s.describeFromSource(decl)
	if err != nil {
		s.logger.Debug("description unresolved", zap.String("component", decl.QualifiedName), zap.Error(err))
	}
	if description == "" {
		description = domain.PlaceholderDescription
	}
	if cacheable {
		s.descriptions.Store(decl.Identity, description)
	}
	return description
}

func (s *Synthesizer) describeFromSource(decl domain.ComponentDeclaration) (string, error) {
	path, ok := s.locator.Locate(decl)
	if !ok {
		return "", &domain.UnresolvedSourceError{Identity: decl.Identity.String(), Path: decl.SourceLocation}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.UnresolvedSourceError{Identity: decl.Identity.String(), Path: path}
	}
	return LeadingComment(content), nil
}

// Retain drops cached results for identities outside live.
func (s *Synthesizer) Retain(live map[domain.ComponentIdentity]struct{}) {
	for _, cache := range []*sync.Map{&s.descriptions, &s.documents} {
		cache.Range(func(key, _ any) bool {
			if _, ok := live[key.(domain.ComponentIdentity)]; !ok {
				cache.Delete(key)
			}
			return true
		})
	}
}

// BuildInputSchema renders parameter descriptors as an object schema in
// declaration order.
func BuildInputSchema(params []domain.ParameterDescriptor) domain.InputSchema {
	schema := domain.InputSchema{
		Properties: make([]domain.SchemaProperty, 0, len(params)),
		Required:   []string{},
	}
	for _, param := range params {
		schema.Properties = append(schema.Properties, domain.SchemaProperty{
			Name: param.Name,
			Schema: domain.PropertySchema{
				Type:        param.Type.SchemaType(),
				Description: param.Description,
			},
		})
		if param.Required {
			schema.Required = append(schema.Required, param.Name)
		}
	}
	return schema
}

// ValidateInputSchema checks that schema resolves as JSON Schema.
func ValidateInputSchema(schema domain.InputSchema) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode input schema: %w", err)
	}
	var resolved jsonschema.Schema
	if err := json.Unmarshal(data, &resolved); err != nil {
		return fmt.Errorf("decode input schema: %w", err)
	}
	if _, err := resolved.Resolve(nil); err != nil {
		return fmt.Errorf("resolve input schema: %w", err)
	}
	return nil
}

func cloneDocument(doc domain.MetadataDocument) domain.MetadataDocument {
	out := doc
	out.InputSchema.Properties = append(make([]domain.SchemaProperty, 0, len(doc.InputSchema.Properties)), doc.InputSchema.Properties...)
	out.InputSchema.Required = append([]string{}, doc.InputSchema.Required...)
	return out
}
