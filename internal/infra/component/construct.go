package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"plasma/internal/domain"
	"plasma/internal/infra/coercion"
)

// Construct builds the coerced parameter set for one invocation. Parameters
// are processed in declaration order and the first failure aborts.
func Construct(decl domain.ComponentDeclaration, input map[string]any) (domain.Params, error) {
	values := make(map[string]any, len(decl.Parameters))
	names := make([]string, 0, len(decl.Parameters))
	for _, param := range decl.Parameters {
		raw := input[param.Name]
		if raw == nil {
			if param.Required {
				return domain.Params{}, &domain.MissingParameterError{Name: param.Name}
			}
			continue
		}
		value, err := coercion.Coerce(raw, param.Type)
		if err != nil {
			var coercionErr *domain.CoercionError
			if errors.As(err, &coercionErr) {
				coercionErr.Param = param.Name
			}
			return domain.Params{}, err
		}
		values[param.Name] = value
		names = append(names, param.Name)
	}
	return domain.NewParams(names, values), nil
}

// DecodeArguments turns raw protocol arguments into an input mapping.
// Empty and null payloads decode to an empty mapping. Numbers stay
// json.Number so integers beyond float64 precision reach coercion intact.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var input map[string]any
	if err := dec.Decode(&input); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode arguments: trailing data after object")
	}
	if input == nil {
		input = map[string]any{}
	}
	return input, nil
}

// StringArguments widens string-only arguments, as carried by prompts and
// URI templates, into an input mapping.
func StringArguments(args map[string]string) map[string]any {
	input := make(map[string]any, len(args))
	for key, value := range args {
		input[key] = value
	}
	return input
}
