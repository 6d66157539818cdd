package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSchemaFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.cue":            "package schemas\n",
		"a.cue":            "package schemas\n",
		"z.yml":            "record: {}\n",
		"m.yaml":           "record: {}\n",
		ConfigFileName:     "package: x\n",
		"README.md":        "docs",
		"nested/deep.cue":  "package nested\n",
		"nested/deep.yaml": "record: {}\n",
	})

	cueFiles, yamlFiles, err := FindSchemaFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cue"), filepath.Join(dir, "b.cue")}, cueFiles)
	assert.Equal(t, []string{filepath.Join(dir, "m.yaml"), filepath.Join(dir, "z.yml")}, yamlFiles)
}

func TestLoadSchemasAcrossFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pair.cue": `package schemas

record: Pair: fields: {
	"1:first": "Name"
	"2:tags":  "Tag[]"
}
`,
		"name.cue": `package schemas

record: Name: fields: "1:value": "string"
`,
		"tag.yaml": "record:\n  Tag:\n    fields:\n      value: string\n",
	})

	result, errs := LoadSchemas(dir)
	require.Empty(t, errs)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.FileCount())

	var names []string
	for _, d := range result.Decls {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"Pair", "Name", "Tag"}, names)
}

func TestLoadSchemasDirectoryErrors(t *testing.T) {
	file := writeFiles(t, map[string]string{"x.cue": "package x\n"})
	tests := []struct {
		name string
		dir  string
		code string
	}{
		{"missing", filepath.Join(t.TempDir(), "none"), ErrCodeNotFound},
		{"not a directory", filepath.Join(file, "x.cue"), ErrCodeNotFound},
		{"no schema files", writeFiles(t, map[string]string{"notes.txt": "x"}), ErrCodeNoFiles},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, errs := LoadSchemas(tt.dir)
			assert.Nil(t, result)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, toCLIError(errs[0]).Code)
		})
	}
}

func TestLoadSchemasNoRecords(t *testing.T) {
	dir := writeFiles(t, map[string]string{"empty.cue": "package schemas\n\nother: 1\n"})

	result, errs := LoadSchemas(dir)
	require.NotNil(t, result)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeGeneric, toCLIError(errs[0]).Code)
	assert.Contains(t, errs[0].Error(), "no records found")
}

func TestLoadSchemasKeepsGoodFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"good.yaml": "record:\n  Tag:\n    fields:\n      value: string\n",
		"bad.yaml":  "record:\n  Broken:\n    fieldz: {}\n",
	})

	result, errs := LoadSchemas(dir)
	require.NotNil(t, result)
	require.NotEmpty(t, errs)
	require.Len(t, result.Decls, 1)
	assert.Equal(t, "Tag", result.Decls[0].Name)
}

func TestLoadErrorString(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no schema files"}
	assert.Equal(t, "E003: no schema files", err.Error())
}
