package domain

import (
	"fmt"
	"reflect"
)

// Params is the coerced parameter set of one invocation. It is read-only
// once built.
type Params struct {
	values map[string]any
	names  []string
}

// NewParams copies values in the given order. Names missing from values are skipped.
func NewParams(names []string, values map[string]any) Params {
	out := Params{
		values: make(map[string]any, len(values)),
		names:  make([]string, 0, len(names)),
	}
	for _, name := range names {
		value, ok := values[name]
		if !ok {
			continue
		}
		out.values[name] = value
		out.names = append(out.names, name)
	}
	return out
}

func (p Params) Len() int {
	return len(p.names)
}

// Names returns present parameter names in declaration order.
func (p Params) Names() []string {
	return append([]string(nil), p.names...)
}

func (p Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p Params) Get(name string) (any, bool) {
	value, ok := p.values[name]
	return value, ok
}

func (p Params) Int(name string) int64 {
	value, _ := p.values[name].(int64)
	return value
}

func (p Params) Float(name string) float64 {
	value, _ := p.values[name].(float64)
	return value
}

func (p Params) Bool(name string) bool {
	value, _ := p.values[name].(bool)
	return value
}

func (p Params) String(name string) string {
	value, ok := p.values[name]
	if !ok {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Array returns an array parameter as []any, converting other slice types.
func (p Params) Array(name string) []any {
	value, ok := p.values[name]
	if !ok || value == nil {
		return nil
	}
	if items, ok := value.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

// Map returns a copy of the set.
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for key, value := range p.values {
		out[key] = value
	}
	return out
}
