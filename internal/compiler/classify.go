package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/recgen/internal/ir"
)

// ShapeKind is the storage shape of a type expression.
type ShapeKind uint8

const (
	ShapeAny ShapeKind = iota
	ShapeString
	ShapeInt
	ShapeFloat
	ShapeBool
	ShapeDate
	ShapeURI
	ShapeBinary
	ShapeLiteral
	ShapeRecord
	ShapeParam
	ShapeRecordUnion
	ShapeMixedUnion
	ShapeList
	ShapeSet
	ShapeMap
)

var shapeNames = [...]string{
	"any", "string", "int", "float", "bool", "date", "uri", "binary", "literal",
	"record", "param", "record-union", "mixed-union", "list", "set", "map",
}

func (k ShapeKind) String() string {
	if int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return fmt.Sprintf("shape(%d)", k)
}

// IsScalar reports whether the shape stores a single plain value.
func (k ShapeKind) IsScalar() bool { return k <= ShapeLiteral }

// IsContainer reports list, set and map shapes.
func (k ShapeKind) IsContainer() bool { return k >= ShapeList }

// TypeRef is a resolved reference to a record type, with generic
// arguments for parameterized records.
type TypeRef struct {
	Name string
	Args []TypeRef
}

func (r TypeRef) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = a.String()
	}
	return r.Name + "<" + strings.Join(args, ", ") + ">"
}

// Shape is the classification of one type expression. Nullability is a
// flag, never its own shape.
type Shape struct {
	Kind     ShapeKind
	Nullable bool

	Alias   string // container spelling, display only
	Brand   string
	Literal any

	Record  *TypeRef      // ShapeRecord
	Param   string        // ShapeParam
	Members []TypeRef     // record members of a union, in order
	Union   []ir.TypeExpr // every union member, in order

	Elem ir.TypeExpr // list/set element or map value
	Key  ir.TypeExpr // map key
}

// Classify determines the storage shape of t. Record names resolve
// against the unit registry and the declaration's type parameters.
func Classify(t ir.TypeExpr, sc scope) (Shape, error) {
	var sh Shape
	if inner, ok := ir.Unwrap(t); ok {
		sh.Nullable = true
		t = inner
		// T?? is still T?.
		for {
			next, again := ir.Unwrap(t)
			if !again {
				break
			}
			t = next
		}
	}

	switch x := t.(type) {
	case ir.Primitive:
		sh.Kind = primitiveShape(x.Kind)
	case ir.Special:
		switch x.Kind {
		case ir.KindTimestamp:
			sh.Kind = ShapeDate
		case ir.KindURI:
			sh.Kind = ShapeURI
		case ir.KindBytes:
			sh.Kind = ShapeBinary
		}
	case ir.Literal:
		sh.Kind = ShapeLiteral
		sh.Literal = x.Value
	case ir.Branded:
		base, ok := x.Base.(ir.Primitive)
		if !ok {
			return sh, shapeError("cannot brand %s", x.Base)
		}
		sh.Kind = primitiveShape(base.Kind)
		sh.Brand = x.Brand
	case ir.ArrayOf:
		sh.Kind, sh.Elem, sh.Alias = ShapeList, x.Elem, x.Alias
	case ir.SetOf:
		sh.Kind, sh.Elem, sh.Alias = ShapeSet, x.Elem, x.Alias
	case ir.MapOf:
		sh.Kind, sh.Key, sh.Elem, sh.Alias = ShapeMap, x.Key, x.Value, x.Alias
	case ir.Ref:
		return classifyRef(sh, x, sc)
	case ir.Union:
		return classifyUnion(sh, x, sc)
	case ir.InlineRecord:
		return sh, shapeError("inline record was not lifted")
	default:
		return sh, shapeError("unsupported type expression %s", t)
	}
	return sh, nil
}

func primitiveShape(k ir.PrimitiveKind) ShapeKind {
	switch k {
	case ir.KindString:
		return ShapeString
	case ir.KindInt:
		return ShapeInt
	case ir.KindFloat:
		return ShapeFloat
	case ir.KindBool:
		return ShapeBool
	}
	return ShapeAny
}

func classifyRef(sh Shape, ref ir.Ref, sc scope) (Shape, error) {
	if _, ok := sc.param(ref.Name); ok {
		if len(ref.Args) > 0 {
			return sh, &CompileError{Code: ErrBadArity, Message: fmt.Sprintf("type parameter %s takes no type arguments", ref.Name)}
		}
		sh.Kind = ShapeParam
		sh.Param = ref.Name
		return sh, nil
	}
	tr, err := resolveRecord(ref, sc)
	if err != nil {
		return sh, err
	}
	sh.Kind = ShapeRecord
	sh.Record = &tr
	return sh, nil
}

// resolveRecord resolves a reference that must name a record type and
// checks its generic arity.
func resolveRecord(ref ir.Ref, sc scope) (TypeRef, error) {
	d, ok := sc.record(ref.Name)
	if !ok {
		if _, isParam := sc.param(ref.Name); isParam {
			return TypeRef{}, shapeError("type parameter %s cannot be used as a type argument or union member", ref.Name)
		}
		return TypeRef{}, &CompileError{Code: ErrUnknownReference, Message: fmt.Sprintf("unknown type %q", ref.Name)}
	}
	if len(ref.Args) != len(d.Params) {
		return TypeRef{}, &CompileError{
			Code:    ErrBadArity,
			Message: fmt.Sprintf("%s expects %d type arguments, got %d", ref.Name, len(d.Params), len(ref.Args)),
		}
	}
	tr := TypeRef{Name: d.Name}
	for _, a := range ref.Args {
		ar, ok := a.(ir.Ref)
		if !ok {
			return TypeRef{}, shapeError("type argument %s of %s must be a record type", a, ref.Name)
		}
		arg, err := resolveRecord(ar, sc)
		if err != nil {
			return TypeRef{}, err
		}
		tr.Args = append(tr.Args, arg)
	}
	return tr, nil
}

// classifyUnion makes a record union when every member is a record
// reference. Otherwise the scalar members ride along as a mixed union.
func classifyUnion(sh Shape, u ir.Union, sc scope) (Shape, error) {
	seen := make(map[string]bool, len(u.Members))
	scalars := 0
	for _, m := range u.Members {
		if inner, ok := ir.Unwrap(m); ok {
			sh.Nullable = true
			m = inner
		}
		if seen[m.String()] {
			continue
		}
		seen[m.String()] = true
		sh.Union = append(sh.Union, m)

		switch x := m.(type) {
		case ir.Ref:
			tr, err := resolveRecord(x, sc)
			if err != nil {
				return sh, err
			}
			sh.Members = append(sh.Members, tr)
		case ir.Primitive, ir.Literal, ir.Branded:
			scalars++
		default:
			return sh, shapeError("%s cannot be a union member", m)
		}
	}
	if scalars == 0 {
		sh.Kind = ShapeRecordUnion
	} else {
		sh.Kind = ShapeMixedUnion
	}
	return sh, nil
}

func shapeError(format string, args ...any) *CompileError {
	return &CompileError{Code: ErrUnsupportedShape, Message: fmt.Sprintf(format, args...)}
}
