// Package coercion converts loosely typed external values into the typed
// values declared by component parameters.
package coercion

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"plasma/internal/domain"
)

// Coerce converts raw to the type named by tag. A nil raw value is absent and
// yields (nil, nil) for every tag. Unknown tags pass the value through.
func Coerce(raw any, tag domain.TypeTag) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch domain.NormalizeTypeTag(string(tag)) {
	case domain.TypeInteger:
		if value, ok := toInteger(raw); ok {
			return value, nil
		}
	case domain.TypeFloat:
		if value, ok := toFloat(raw); ok {
			return value, nil
		}
	case domain.TypeBoolean:
		return toBoolean(raw), nil
	case domain.TypeString:
		return toString(raw), nil
	case domain.TypeArray:
		if value, ok := toArray(raw); ok {
			return plainNumbers(value), nil
		}
	default:
		return plainNumbers(raw), nil
	}
	return nil, &domain.CoercionError{Value: raw, Type: domain.NormalizeTypeTag(string(tag))}
}

func toInteger(raw any) (int64, bool) {
	switch v := raw.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return parsed, err == nil
	case json.Number:
		if parsed, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return parsed, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return wholeFloat(f)
	case float64:
		return wholeFloat(v)
	case float32:
		return wholeFloat(float64(v))
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	default:
		return 0, false
	}
}

func wholeFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

func toBoolean(raw any) bool {
	if b, ok := raw.(bool); ok {
		return b
	}
	return strings.EqualFold(toString(raw), "true")
}

func toString(raw any) string {
	switch v := raw.(type) {
	case json.Number:
		return v.String()
	case string, bool:
		return cast.ToString(raw)
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Pointer:
		if data, err := json.Marshal(raw); err == nil {
			return string(data)
		}
	}
	if s, err := cast.ToStringE(raw); err == nil {
		return s
	}
	return fmt.Sprint(raw)
}

func toArray(raw any) (any, bool) {
	if s, ok := raw.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, false
		}
		items, ok := parsed.([]any)
		return items, ok
	}
	switch reflect.ValueOf(raw).Kind() {
	case reflect.Slice, reflect.Array:
		return raw, true
	default:
		return nil, false
	}
}

// plainNumbers replaces json.Number inside decoded JSON with int64 when the
// literal is an integer in range and float64 otherwise.
func plainNumbers(raw any) any {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainNumbers(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = plainNumbers(item)
		}
		return out
	default:
		return raw
	}
}
