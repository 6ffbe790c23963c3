package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringify(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "String", raw: `"5"`, expected: "5"},
		{name: "Integer", raw: `4`, expected: "4"},
		{name: "Trailing zero", raw: `12.50`, expected: "12.5"},
		{name: "Exponent literal", raw: `1e3`, expected: "1000"},
		{name: "Negative", raw: `-0.25`, expected: "-0.25"},
		{name: "Negative zero", raw: `-0`, expected: "0"},
		{name: "Large uses exponent", raw: `1e21`, expected: "1e+21"},
		{name: "Just below exponent", raw: `123456789012345678900`, expected: "123456789012345680000"},
		{name: "Small uses exponent", raw: `0.00000015`, expected: "1.5e-7"},
		{name: "Small without exponent", raw: `0.000001`, expected: "0.000001"},
		{name: "Overflow", raw: `1e400`, expected: "Infinity"},
		{name: "Bool", raw: `false`, expected: "false"},
		{name: "Null", raw: `null`, expected: "null"},
		{name: "Array", raw: `["a","b"]`, expected: "a,b"},
		{name: "Array with null and numbers", raw: `[1,null,2.50]`, expected: "1,,2.5"},
		{name: "Nested array", raw: `[["a","b"],"c"]`, expected: "a,b,c"},
		{name: "Empty array", raw: `[]`, expected: ""},
		{name: "Object", raw: `{"k":"v"}`, expected: "[object Object]"},
		{name: "Array of objects", raw: `[{"k":1},{}]`, expected: "[object Object],[object Object]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dec := json.NewDecoder(strings.NewReader(tc.raw))
			dec.UseNumber()
			var v interface{}
			require.NoError(t, dec.Decode(&v))

			assert.Equal(t, tc.expected, stringify(v))
		})
	}
}

func TestDecodeBody_RejectsTrailingData(t *testing.T) {
	_, err := decodeBody(strings.NewReader(`{"recipientId":"u1"} trailing`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed request body")

	fields, err := decodeBody(strings.NewReader("{\"recipientId\":\"u1\"}\n  "))
	require.NoError(t, err)
	assert.Equal(t, "u1", fields["recipientId"])
}
