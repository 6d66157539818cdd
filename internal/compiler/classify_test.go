package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/internal/typeexpr"
)

// classifyScope declares Name, Tag and Box<T> and classifies inside a
// declaration with its own parameter T.
func classifyScope(t *testing.T) scope {
	t.Helper()
	ctx := NewContext("ex")
	record := []ir.ParamDecl{{Name: "T", Constraint: ir.ConstraintRecord}}
	for _, d := range []*ir.RecordDecl{
		{Name: "Name"},
		{Name: "Tag"},
		{Name: "Box", Params: record},
	} {
		require.NoError(t, ctx.Declare(d))
	}
	return scope{ctx: ctx, decl: &ir.RecordDecl{Name: "Holder", Params: record}}
}

func TestClassify(t *testing.T) {
	sc := classifyScope(t)
	tests := []struct {
		src   string
		check func(t *testing.T, sh Shape)
	}{
		{"string", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeString, sh.Kind)
			assert.False(t, sh.Nullable)
		}},
		{"string?", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeString, sh.Kind)
			assert.True(t, sh.Nullable)
		}},
		{"int | null", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeInt, sh.Kind)
			assert.True(t, sh.Nullable)
		}},
		{"number", func(t *testing.T, sh Shape) { assert.Equal(t, ShapeFloat, sh.Kind) }},
		{"Timestamp", func(t *testing.T, sh Shape) { assert.Equal(t, ShapeDate, sh.Kind) }},
		{"URL", func(t *testing.T, sh Shape) { assert.Equal(t, ShapeURI, sh.Kind) }},
		{"Buffer", func(t *testing.T, sh Shape) { assert.Equal(t, ShapeBinary, sh.Kind) }},
		{`"on"`, func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeLiteral, sh.Kind)
			assert.Equal(t, "on", sh.Literal)
		}},
		{`Brand<string, "UserID">`, func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeString, sh.Kind)
			assert.Equal(t, "UserID", sh.Brand)
		}},
		{"ReadonlyArray<int>", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeList, sh.Kind)
			assert.Equal(t, "ReadonlyArray", sh.Alias)
			assert.Equal(t, "int", sh.Elem.String())
		}},
		{"Set<Tag>", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeSet, sh.Kind)
			assert.True(t, sh.Kind.IsContainer())
		}},
		{"Map<string, Name>", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeMap, sh.Kind)
			assert.Equal(t, "string", sh.Key.String())
			assert.Equal(t, "Name", sh.Elem.String())
		}},
		{"Name", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeRecord, sh.Kind)
			assert.Equal(t, "Name", sh.Record.String())
		}},
		{"T", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeParam, sh.Kind)
			assert.Equal(t, "T", sh.Param)
		}},
		{"Box<Name>", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeRecord, sh.Kind)
			assert.Equal(t, "Box<Name>", sh.Record.String())
		}},
		{"Name | Tag", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeRecordUnion, sh.Kind)
			assert.Equal(t, []TypeRef{{Name: "Name"}, {Name: "Tag"}}, sh.Members)
		}},
		{"Name | Tag | null", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeRecordUnion, sh.Kind)
			assert.True(t, sh.Nullable)
		}},
		{"Name | Name", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeRecordUnion, sh.Kind)
			assert.Len(t, sh.Members, 1)
		}},
		{"Name | string", func(t *testing.T, sh Shape) {
			assert.Equal(t, ShapeMixedUnion, sh.Kind)
			assert.Equal(t, []TypeRef{{Name: "Name"}}, sh.Members)
			assert.Len(t, sh.Union, 2)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			sh, err := Classify(typeexpr.MustParse(tt.src), sc)
			require.NoError(t, err)
			tt.check(t, sh)
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	sc := classifyScope(t)
	tests := []struct {
		src  string
		code string
	}{
		{"Nope", ErrUnknownReference},
		{"Box", ErrBadArity},
		{"Box<Name, Tag>", ErrBadArity},
		{"T<Name>", ErrBadArity},
		{"Box<T>", ErrUnsupportedShape},
		{"Name | Tag[]", ErrUnsupportedShape},
		{"Box<string>", ErrUnsupportedShape},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Classify(typeexpr.MustParse(tt.src), sc)
			require.Error(t, err)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}

func TestShapeKindString(t *testing.T) {
	assert.Equal(t, "record-union", ShapeRecordUnion.String())
	assert.Equal(t, "shape(99)", ShapeKind(99).String())
	assert.True(t, ShapeLiteral.IsScalar())
	assert.False(t, ShapeRecord.IsScalar())
}
