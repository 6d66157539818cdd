package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"max int64", IRInt(9223372036854775807), "9223372036854775807"},
		{"bool true", IRBool(true), "true"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"array of ints", IRArray{IRInt(1), IRInt(2)}, "[1,2]"},
		{"simple object", IRObject{"a": IRInt(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := IRObject{
		"z": IRObject{"b": IRInt(1), "a": IRInt(2)},
		"a": IRInt(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalEscaping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<a & b>", `"<a & b>"`},
		{"quote\"back\\", `"quote\"back\\"`},
		{"line\nbreak\ttab", `"line\nbreak\ttab"`},
		{"\x01", `"\u0001"`},
		{"sep\u2028x", "\"sep\u2028x\""},
	}
	for _, tt := range tests {
		result, err := MarshalCanonical(IRString(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(result), "input %q", tt.in)
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "é"
	composed := "é"

	a, err := MarshalCanonical(IRString(decomposed))
	require.NoError(t, err)
	b, err := MarshalCanonical(IRString(composed))
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(IRObject{"a": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}
