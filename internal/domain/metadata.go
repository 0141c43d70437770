package domain

import (
	"bytes"
	"encoding/json"
)

// PlaceholderDescription is used when no description can be derived.
const PlaceholderDescription = "No description available"

// MetadataDocument is the externally visible description of a component.
type MetadataDocument struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// PropertySchema is the schema of one input property.
type PropertySchema struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// SchemaProperty pairs a property name with its schema.
type SchemaProperty struct {
	Name   string
	Schema PropertySchema
}

// InputSchema is an object schema whose properties keep declaration order
// when marshaled.
type InputSchema struct {
	Properties []SchemaProperty
	Required   []string
}

func (s InputSchema) Property(name string) (PropertySchema, bool) {
	for _, prop := range s.Properties {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return PropertySchema{}, false
}

func (s InputSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	for i, prop := range s.Properties {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(prop.Schema)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString(`},"required":`)
	required := s.Required
	if required == nil {
		required = []string{}
	}
	raw, err := json.Marshal(required)
	if err != nil {
		return nil, err
	}
	buf.Write(raw)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the property order of the encoded document.
func (s *InputSchema) UnmarshalJSON(data []byte) error {
	var wire struct {
		Properties json.RawMessage `json:"properties"`
		Required   []string        `json:"required"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.Required = wire.Required
	s.Properties = nil
	if len(wire.Properties) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(wire.Properties))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var schema PropertySchema
		if err := dec.Decode(&schema); err != nil {
			return err
		}
		s.Properties = append(s.Properties, SchemaProperty{Name: name, Schema: schema})
	}
	return nil
}
