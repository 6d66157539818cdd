package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/internal/typeexpr"
)

// LoadYAML reads record declarations from a YAML document with the same
// layout as the CUE form. yaml.Node keeps field order.
func LoadYAML(filename string, src []byte) ([]*ir.RecordDecl, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &CompileError{Code: ErrLoad, Message: err.Error(), Pos: ir.Pos{File: filename}}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, yamlError(filename, root, "", "", "document must be a mapping")
	}

	records := mappingValue(root, "record")
	if records == nil {
		return nil, nil
	}
	if records.Kind != yaml.MappingNode {
		return nil, yamlError(filename, records, "", "", "record must be a mapping")
	}

	var (
		decls []*ir.RecordDecl
		errs  CompileErrors
	)
	for i := 0; i+1 < len(records.Content); i += 2 {
		name := records.Content[i].Value
		decl, err := yamlRecord(filename, name, records.Content[i+1])
		if err != nil {
			errs = append(errs, asCompileError(err, name))
			continue
		}
		decl.Pos = yamlPos(filename, records.Content[i])
		decls = append(decls, decl)
	}
	return decls, errs.orNil()
}

func yamlRecord(file, name string, n *yaml.Node) (*ir.RecordDecl, error) {
	if n.Kind != yaml.MappingNode {
		return nil, yamlError(file, n, name, "", "record must be a mapping")
	}
	decl := &ir.RecordDecl{Name: name}

	if id := mappingValue(n, "identity"); id != nil {
		decl.Identity = id.Value
	}

	fields := mappingValue(n, "fields")
	if fields == nil {
		return nil, yamlError(file, n, name, "fields", "fields is required")
	}
	var err error
	decl.Fields, err = yamlFields(file, name, fields)
	if err != nil {
		return nil, err
	}

	if params := mappingValue(n, "params"); params != nil {
		if params.Kind != yaml.MappingNode {
			return nil, yamlError(file, params, name, "params", "params must be a mapping")
		}
		for i := 0; i+1 < len(params.Content); i += 2 {
			p, err := paramDecl(name, params.Content[i].Value, params.Content[i+1].Value, yamlPos(file, params.Content[i]))
			if err != nil {
				return nil, err
			}
			decl.Params = append(decl.Params, p)
		}
	}

	if ro := mappingValue(n, "readonly"); ro != nil {
		if err := ro.Decode(&decl.Readonly); err != nil {
			return nil, yamlError(file, ro, name, "readonly", "readonly must be a list of field names")
		}
	}

	if c := mappingValue(n, "compact"); c != nil {
		switch c.Kind {
		case yaml.ScalarNode:
			var enabled bool
			if err := c.Decode(&enabled); err != nil {
				return nil, yamlError(file, c, name, "compact", "compact must be a bool or a mapping")
			}
			decl.Compact.Enabled = enabled
		case yaml.MappingNode:
			decl.Compact.Enabled = true
			if p := mappingValue(c, "prefix"); p != nil {
				decl.Compact.Prefix = p.Value
			}
		default:
			return nil, yamlError(file, c, name, "compact", "compact must be a bool or a mapping")
		}
	}
	return decl, nil
}

func yamlFields(file, record string, n *yaml.Node) ([]ir.FieldDecl, error) {
	if n.Kind != yaml.MappingNode {
		return nil, yamlError(file, n, record, "", "fields must be a mapping")
	}
	var fields []ir.FieldDecl
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		field := ir.FieldDecl{Key: k.Value, Pos: yamlPos(file, k)}
		switch v.Kind {
		case yaml.ScalarNode:
			t, err := typeexpr.Parse(v.Value)
			if err != nil {
				return nil, &CompileError{
					Record:  record,
					Field:   k.Value,
					Code:    ErrInvalidTypeExpr,
					Message: err.Error(),
					Pos:     yamlPos(file, v),
				}
			}
			field.Type = t
		case yaml.MappingNode:
			inner, err := yamlFields(file, record, v)
			if err != nil {
				return nil, err
			}
			field.Type = ir.InlineRecord{Fields: inner}
		default:
			return nil, yamlError(file, v, record, k.Value, "field type must be a string or a mapping")
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// mappingValue returns the value node under key, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func yamlPos(file string, n *yaml.Node) ir.Pos {
	return ir.Pos{File: file, Line: n.Line, Column: n.Column}
}

func yamlError(file string, n *yaml.Node, record, field, format string, args ...any) *CompileError {
	return &CompileError{
		Record:  record,
		Field:   field,
		Code:    ErrLoad,
		Message: fmt.Sprintf(format, args...),
		Pos:     yamlPos(file, n),
	}
}
