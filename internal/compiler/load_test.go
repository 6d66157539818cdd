package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recgen/internal/ir"
)

const pairCUE = `
record: Pair: {
	identity: "example.Pair"
	fields: {
		"1:first":  "Name"
		"2:second": "Set<Tag>"
		"note?":    "string"
		meta: { author: "string", "tags?": "string[]" }
	}
	readonly: ["first"]
}
record: Name: {
	compact: prefix: "name:"
	fields: "1:value": "string"
}
record: Tag: {
	compact: true
	fields: "1:value": "string"
}
record: Box: {
	params: T: "record"
	fields: "1:item": "T"
}
`

// TestLoadCUEPair tests that the documented schema layout loads in order.
func TestLoadCUEPair(t *testing.T) {
	decls, err := LoadCUE("pair.cue", []byte(pairCUE))
	require.NoError(t, err)
	require.Len(t, decls, 4)

	pair := decls[0]
	assert.Equal(t, "Pair", pair.Name)
	assert.Equal(t, "example.Pair", pair.Identity)
	assert.Equal(t, []string{"first"}, pair.Readonly)
	require.Len(t, pair.Fields, 4)

	keys := make([]string, len(pair.Fields))
	for i, f := range pair.Fields {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{"1:first", "2:second", "note?", "meta"}, keys)
	assert.Equal(t, "Set<Tag>", pair.Fields[1].Type.String())

	meta, ok := pair.Fields[3].Type.(ir.InlineRecord)
	require.True(t, ok, "meta should load as an inline record")
	require.Len(t, meta.Fields, 2)
	assert.Equal(t, "tags?", meta.Fields[1].Key)
	assert.True(t, pair.Fields[0].Pos.IsValid())
	assert.Equal(t, "pair.cue", pair.Fields[0].Pos.File)

	name := decls[1]
	assert.Equal(t, ir.Compact{Enabled: true, Prefix: "name:"}, name.Compact)
	assert.Equal(t, ir.Compact{Enabled: true}, decls[2].Compact)
	assert.Equal(t, []ir.ParamDecl{{Name: "T", Constraint: ir.ConstraintRecord}}, decls[3].Params)
}

// TestLoadCUEOptionalField tests that CUE optional fields become optional keys.
func TestLoadCUEOptionalField(t *testing.T) {
	decls, err := LoadCUE("opt.cue", []byte(`
		record: Person: fields: {
			name: "string"
			nick?: "string"
			age: int
		}
	`))
	require.NoError(t, err)
	require.Len(t, decls, 1)
	fields := decls[0].Fields
	require.Len(t, fields, 3)
	assert.False(t, fields[0].Optional)
	assert.True(t, fields[1].Optional)
	assert.Equal(t, "nick", fields[1].Key)
	assert.Equal(t, ir.Primitive{Kind: ir.KindInt}, fields[2].Type, "non-concrete CUE int is the int primitive")
}

// TestLoadCUEErrors tests that bad declarations are collected per record.
func TestLoadCUEErrors(t *testing.T) {
	decls, err := LoadCUE("bad.cue", []byte(`
		record: Good: fields: a: "string"
		record: NoFields: identity: "x.NoFields"
		record: BadType: fields: a: "Map<string"
		record: BadParam: {
			params: T: "number"
			fields: a: "T"
		}
	`))
	require.Error(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "Good", decls[0].Name)

	var errs CompileErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 3)
	assert.Equal(t, ErrLoad, errs[0].Code)
	assert.Equal(t, "NoFields", errs[0].Record)
	assert.Equal(t, ErrInvalidTypeExpr, errs[1].Code)
	assert.Equal(t, "a", errs[1].Field)
	assert.Equal(t, ErrInvalidParam, errs[2].Code)
}

// TestLoadCUESyntaxError tests that CUE syntax errors carry a position.
func TestLoadCUESyntaxError(t *testing.T) {
	_, err := LoadCUE("broken.cue", []byte(`record: Pair: {`))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrLoad, ce.Code)
	assert.True(t, ce.Pos.IsValid())
}

// TestLoadYAMLMatchesCUE tests that the YAML layout loads the same declarations.
func TestLoadYAMLMatchesCUE(t *testing.T) {
	src := `
record:
  Pair:
    identity: example.Pair
    fields:
      "1:first": Name
      "2:second": Set<Tag>
      note?: string
      meta:
        author: string
        tags?: string[]
    readonly: [first]
  Name:
    compact:
      prefix: "name:"
    fields:
      "1:value": string
  Tag:
    compact: true
    fields:
      "1:value": string
  Box:
    params:
      T: record
    fields:
      "1:item": T
`
	fromYAML, err := LoadYAML("pair.yaml", []byte(src))
	require.NoError(t, err)
	fromCUE, err := LoadCUE("pair.cue", []byte(pairCUE))
	require.NoError(t, err)
	require.Len(t, fromYAML, len(fromCUE))

	for i := range fromCUE {
		yh, err := ir.DeclHash(fromYAML[i])
		require.NoError(t, err)
		ch, err := ir.DeclHash(fromCUE[i])
		require.NoError(t, err)
		assert.Equal(t, ch, yh, "record %s should hash the same from YAML and CUE", fromCUE[i].Name)
	}
	assert.Equal(t, 6, fromYAML[0].Fields[0].Pos.Line)
}

// TestLoadYAMLErrors tests YAML-specific shape errors.
func TestLoadYAMLErrors(t *testing.T) {
	_, err := LoadYAML("bad.yaml", []byte("record: [1, 2]"))
	require.Error(t, err)

	decls, err := LoadYAML("bad.yaml", []byte(`
record:
  A:
    fields:
      x: [string]
  B:
    fields:
      y: int
`))
	require.Error(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "B", decls[0].Name)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "A", ce.Record)
	assert.Equal(t, "x", ce.Field)

	decls, err = LoadYAML("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, decls)
}

// TestLoadFile tests dispatch on the file extension.
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	cuePath := filepath.Join(dir, "pair.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(pairCUE), 0o644))
	yamlPath := filepath.Join(dir, "tag.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("record:\n  Tag:\n    fields:\n      value: string\n"), 0o644))

	decls, err := LoadFile(cuePath)
	require.NoError(t, err)
	assert.Equal(t, "Pair", decls[0].Name)

	decls, err = LoadFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "Tag", decls[0].Name)

	_, err = LoadFile(filepath.Join(dir, "schema.txt"))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrLoad, ce.Code)

	_, err = LoadFile(filepath.Join(dir, "missing.cue"))
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrLoad, ce.Code)
}
