package coercion

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plasma/internal/domain"
)

func TestCoerce_Integer(t *testing.T) {
	cases := []struct {
		name   string
		raw    any
		expect int64
		fail   bool
	}{
		{name: "string", raw: "42", expect: 42},
		{name: "negative string", raw: "-17", expect: -17},
		{name: "padded string", raw: " 7 ", expect: 7},
		{name: "native int", raw: 9, expect: 9},
		{name: "whole float", raw: float64(12), expect: 12},
		{name: "json number", raw: json.Number("300"), expect: 300},
		{name: "decimal string", raw: "3.14", fail: true},
		{name: "words", raw: "Wolf 359", fail: true},
		{name: "hex string", raw: "0x1A", fail: true},
		{name: "exponent string", raw: "1e3", fail: true},
		{name: "empty string", raw: "", fail: true},
		{name: "fractional float", raw: 2.5, fail: true},
		{name: "boolean", raw: true, fail: true},
		{name: "slice", raw: []any{1}, fail: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.raw, domain.TypeInteger)
			if tc.fail {
				var coercionErr *domain.CoercionError
				require.ErrorAs(t, err, &coercionErr)
				assert.Equal(t, domain.TypeInteger, coercionErr.Type)
				assert.Equal(t, tc.raw, coercionErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestCoerce_IntegerRoundTripsStringForm(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -9000, 1 << 40, -(1 << 62)} {
		got, err := Coerce(strconv.FormatInt(n, 10), domain.TypeInteger)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestCoerce_Float(t *testing.T) {
	cases := []struct {
		name   string
		raw    any
		expect float64
		fail   bool
	}{
		{name: "decimal string", raw: "3.14", expect: 3.14},
		{name: "integer string", raw: "42", expect: 42},
		{name: "exponent", raw: "1e3", expect: 1000},
		{name: "native float", raw: 2.5, expect: 2.5},
		{name: "native int", raw: 3, expect: 3},
		{name: "suffix", raw: "1.0f", fail: true},
		{name: "registry", raw: "NCC-1701", fail: true},
		{name: "nan", raw: "NaN", fail: true},
		{name: "boolean", raw: false, fail: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.raw, domain.TypeFloat)
			if tc.fail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.expect, got, 1e-9)
		})
	}
}

func TestCoerce_BooleanIsTotal(t *testing.T) {
	cases := []struct {
		raw    any
		expect bool
	}{
		{raw: true, expect: true},
		{raw: "true", expect: true},
		{raw: "TRUE", expect: true},
		{raw: "True", expect: true},
		{raw: false, expect: false},
		{raw: "false", expect: false},
		{raw: "yes", expect: false},
		{raw: "1", expect: false},
		{raw: 1, expect: false},
		{raw: "definitely not", expect: false},
		{raw: []any{"true"}, expect: false},
	}

	for _, tc := range cases {
		got, err := Coerce(tc.raw, domain.TypeBoolean)
		require.NoError(t, err, "input %#v", tc.raw)
		assert.Equal(t, tc.expect, got, "input %#v", tc.raw)
	}
}

func TestCoerce_String(t *testing.T) {
	cases := []struct {
		raw    any
		expect string
	}{
		{raw: "hello", expect: "hello"},
		{raw: 123, expect: "123"},
		{raw: 1.5, expect: "1.5"},
		{raw: true, expect: "true"},
		{raw: []any{}, expect: "[]"},
		{raw: []any{"a", 1}, expect: `["a",1]`},
		{raw: map[string]any{"k": "v"}, expect: `{"k":"v"}`},
	}

	for _, tc := range cases {
		got, err := Coerce(tc.raw, domain.TypeString)
		require.NoError(t, err)
		assert.Equal(t, tc.expect, got)
	}
}

func TestCoerce_Array(t *testing.T) {
	native := []any{"a", "b"}
	got, err := Coerce(native, domain.TypeArray)
	require.NoError(t, err)
	if diff := cmp.Diff(native, got); diff != "" {
		t.Fatalf("passthrough mismatch (-want +got):\n%s", diff)
	}

	typed := []string{"x", "y"}
	got, err = Coerce(typed, domain.TypeArray)
	require.NoError(t, err)
	assert.Equal(t, typed, got)

	got, err = Coerce(`["a", 2, {"b": true}]`, domain.TypeArray)
	require.NoError(t, err)
	expect := []any{"a", float64(2), map[string]any{"b": true}}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Fatalf("parsed array mismatch (-want +got):\n%s", diff)
	}

	for _, raw := range []any{`{"a": 1}`, `"text"`, `[1, 2`, "not json", 12, map[string]any{"a": 1}} {
		_, err := Coerce(raw, domain.TypeArray)
		require.Error(t, err, "input %#v", raw)
	}
}

func TestCoerce_DecodedNumbers(t *testing.T) {
	got, err := Coerce(json.Number("9223372036854775807"), domain.TypeInteger)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), got)

	got, err = Coerce(json.Number("12345678901234567891"), domain.TypeString)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567891", got)

	got, err = Coerce([]any{json.Number("1"), json.Number("1.5"), json.Number("1e999")}, domain.TypeArray)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), 1.5, "1e999"}, got)

	got, err = Coerce(map[string]any{"n": json.Number("3")}, "widget")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": int64(3)}, got)
}

func TestCoerce_NilIsAbsent(t *testing.T) {
	for _, tag := range []domain.TypeTag{domain.TypeInteger, domain.TypeFloat, domain.TypeBoolean, domain.TypeString, domain.TypeArray, "custom"} {
		got, err := Coerce(nil, tag)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestCoerce_UnknownTagPassesThrough(t *testing.T) {
	value := map[string]any{"nested": []any{1, 2}}
	got, err := Coerce(value, "widget")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCoerce_TagIsCaseInsensitive(t *testing.T) {
	got, err := Coerce("5", "Integer")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}
