package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"first", "First"},
		{"first_name", "FirstName"},
		{"userId", "UserId"},
		{"id", "ID"},
		{"user_id", "UserID"},
		{"url", "URL"},
		{"Url", "Url"},
		{"ID", "ID"},
		{"Pair", "Pair"},
		{"_x", "X"},
		{"", "X"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GoName(tt.in), "GoName(%q)", tt.in)
	}
}

func TestGoPrivate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"FirstName", "firstName"},
		{"URLPath", "urlPath"},
		{"ID", "id"},
		{"T", "t"},
		{"type", "type_"},
		{"item", "item"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, goPrivate(tt.in), "goPrivate(%q)", tt.in)
	}
}

func TestSnakeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pair", "pair"},
		{"PairMeta", "pair_meta"},
		{"HTTPRoute", "http_route"},
		{"DocChoice2", "doc_choice2"},
		{"A", "a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SnakeName(tt.in), "SnakeName(%q)", tt.in)
	}
}

// TestParseFieldKey tests tag and optional marker parsing of field keys.
func TestParseFieldKey(t *testing.T) {
	tests := []struct {
		key      string
		name     string
		tag      int
		optional bool
		code     string
	}{
		{key: "first", name: "first"},
		{key: "1:first", name: "first", tag: 1},
		{key: "2:second?", name: "second", tag: 2, optional: true},
		{key: "note?", name: "note", optional: true},
		{key: "_private", name: "_private"},
		{key: "0:a", code: ErrInvalidTag},
		{key: "-1:a", code: ErrInvalidTag},
		{key: "x:a", code: ErrInvalidTag},
		{key: "1:", code: ErrInvalidFieldKey},
		{key: "a-b", code: ErrInvalidFieldKey},
		{key: "$tag", code: ErrInvalidFieldKey},
		{key: "9lives", code: ErrInvalidFieldKey},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			name, tag, optional, err := ParseFieldKey(tt.key)
			if tt.code != "" {
				var ce *CompileError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, tt.code, ce.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.tag, tag)
			assert.Equal(t, tt.optional, optional)
		})
	}
}
