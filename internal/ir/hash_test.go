package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairDecl() *RecordDecl {
	return &RecordDecl{
		Name:     "Pair",
		Identity: "example.Pair",
		Fields: []FieldDecl{
			{Key: "1:first", Type: Ref{Name: "Name"}},
			{Key: "2:second", Type: SetOf{Elem: Ref{Name: "Tag"}}},
			{Key: "note", Type: Primitive{Kind: KindString}, Optional: true},
		},
		Pos: Pos{File: "pair.cue", Line: 3, Column: 1},
	}
}

func TestDeclHashDeterminism(t *testing.T) {
	h1, err := DeclHash(pairDecl())
	require.NoError(t, err)
	h2, err := DeclHash(pairDecl())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestDeclHashIgnoresPosition(t *testing.T) {
	moved := pairDecl()
	moved.Pos = Pos{File: "other.cue", Line: 90}

	assert.Equal(t, MustDeclHash(pairDecl()), MustDeclHash(moved))
}

func TestDeclHashChangesWithContent(t *testing.T) {
	base := MustDeclHash(pairDecl())

	renamed := pairDecl()
	renamed.Identity = "example.Pair2"

	retyped := pairDecl()
	retyped.Fields[2].Type = Primitive{Kind: KindInt}

	compact := pairDecl()
	compact.Compact = Compact{Enabled: true, Prefix: "p:"}

	assert.NotEqual(t, base, MustDeclHash(renamed))
	assert.NotEqual(t, base, MustDeclHash(retyped))
	assert.NotEqual(t, base, MustDeclHash(compact))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainRecord, data), hashWithDomain(DomainUnit, data))
}

func TestUnitHash(t *testing.T) {
	a := UnitHash("model", []string{"h1", "h2"})
	assert.Equal(t, a, UnitHash("model", []string{"h1", "h2"}))
	assert.NotEqual(t, a, UnitHash("model", []string{"h2", "h1"}))
	assert.NotEqual(t, a, UnitHash("other", []string{"h1", "h2"}))
}

func TestOutputHash(t *testing.T) {
	decl := MustDeclHash(pairDecl())
	h := OutputHash("example", "example.Pair", decl)

	assert.Len(t, h, 64)
	assert.Equal(t, h, OutputHash("example", "example.Pair", decl))
	assert.NotEqual(t, h, OutputHash("other", "example.Pair", decl), "package is part of the key")
	assert.NotEqual(t, h, OutputHash("example", "acme.Pair", decl), "identity is part of the key")
	assert.NotEqual(t, h, decl)
}

func TestCanonicalDecl(t *testing.T) {
	data, err := CanonicalDecl(pairDecl())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Pair"`)
	assert.NotContains(t, string(data), "pair.cue", "positions are not part of the canonical form")
	assert.Equal(t, hashWithDomain(DomainRecord, data), MustDeclHash(pairDecl()))
}
