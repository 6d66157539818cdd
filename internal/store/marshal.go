package store

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/roach88/recgen/internal/ir"
)

// marshalDecl converts a declaration to canonical JSON TEXT for storage.
// This is the same byte string the declaration hash is taken over.
func marshalDecl(d *ir.RecordDecl) (string, error) {
	data, err := ir.CanonicalDecl(d)
	if err != nil {
		return "", fmt.Errorf("marshal decl %s: %w", d.Name, err)
	}
	return string(data), nil
}

// unmarshalDecl parses a stored declaration back into a generic object.
func unmarshalDecl(data string) (map[string]any, error) {
	if data == "" {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal decl: %w", err)
	}
	return obj, nil
}
