package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeExpr is a parsed field type expression.
// Only the types in this file implement it.
type TypeExpr interface {
	typeExpr()
	String() string
}

// PrimitiveKind names a scalar type.
type PrimitiveKind string

const (
	KindString PrimitiveKind = "string"
	KindInt    PrimitiveKind = "int"
	KindFloat  PrimitiveKind = "float"
	KindBool   PrimitiveKind = "bool"
	KindAny    PrimitiveKind = "any"
)

// SpecialKind names a scalar with a dedicated runtime wrapper.
type SpecialKind string

const (
	KindTimestamp SpecialKind = "Date"
	KindURI       SpecialKind = "URI"
	KindBytes     SpecialKind = "Bytes"
)

// Primitive is string, int, float, bool or any.
type Primitive struct {
	Kind PrimitiveKind
}

// Special is a timestamp, URI or byte string.
type Special struct {
	Kind SpecialKind
}

// Literal is a single permitted value: string, int64, float64 or bool.
type Literal struct {
	Value any
}

// Nullable marks Inner as also accepting null.
type Nullable struct {
	Inner TypeExpr
}

// ArrayOf is an ordered sequence. Alias keeps the spelling used in the
// schema ("ReadonlyArray", "List") for display only.
type ArrayOf struct {
	Elem  TypeExpr
	Alias string
}

// SetOf is an insertion-ordered collection of distinct values.
type SetOf struct {
	Elem  TypeExpr
	Alias string
}

// MapOf is an insertion-ordered key/value collection.
type MapOf struct {
	Key   TypeExpr
	Value TypeExpr
	Alias string
}

// Ref names a record type or a type parameter, optionally with generic arguments.
type Ref struct {
	Name string
	Args []TypeExpr
}

// Union accepts any of its members. Members never contain null; the parser
// lifts null into a Nullable wrapper.
type Union struct {
	Members []TypeExpr
}

// Branded is a nominal alias of a scalar base type.
type Branded struct {
	Base  TypeExpr
	Brand string
}

// InlineRecord is an anonymous record literal. The compiler synthesizes a
// named record for it.
type InlineRecord struct {
	Fields []FieldDecl
}

func (Primitive) typeExpr()    {}
func (Special) typeExpr()      {}
func (Literal) typeExpr()      {}
func (Nullable) typeExpr()     {}
func (ArrayOf) typeExpr()      {}
func (SetOf) typeExpr()        {}
func (MapOf) typeExpr()        {}
func (Ref) typeExpr()          {}
func (Union) typeExpr()        {}
func (Branded) typeExpr()      {}
func (InlineRecord) typeExpr() {}

func (p Primitive) String() string { return string(p.Kind) }
func (s Special) String() string   { return string(s.Kind) }

func (l Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (n Nullable) String() string { return wrapPostfix(n.Inner) + "?" }

func (a ArrayOf) String() string {
	if a.Alias == "" {
		return wrapPostfix(a.Elem) + "[]"
	}
	return a.Alias + "<" + a.Elem.String() + ">"
}

func (s SetOf) String() string {
	return orDefault(s.Alias, "Set") + "<" + s.Elem.String() + ">"
}

func (m MapOf) String() string {
	return orDefault(m.Alias, "Map") + "<" + m.Key.String() + ", " + m.Value.String() + ">"
}

func (r Ref) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	return r.Name + "<" + joinExprs(r.Args, ", ") + ">"
}

func (u Union) String() string { return joinExprs(u.Members, " | ") }

func (b Branded) String() string {
	return "Brand<" + b.Base.String() + ", " + strconv.Quote(b.Brand) + ">"
}

func (r InlineRecord) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		key := f.Key
		if f.Optional && !strings.HasSuffix(key, "?") {
			key += "?"
		}
		if !isPlainKey(key) {
			key = strconv.Quote(key)
		}
		parts[i] = key + ": " + f.Type.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Unwrap strips a Nullable wrapper, reporting whether one was present.
func Unwrap(t TypeExpr) (TypeExpr, bool) {
	if n, ok := t.(Nullable); ok {
		return n.Inner, true
	}
	return t, false
}

func wrapPostfix(t TypeExpr) string {
	switch t.(type) {
	case Union, Nullable:
		return "(" + t.String() + ")"
	}
	return t.String()
}

func joinExprs(ts []TypeExpr, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func isPlainKey(key string) bool {
	key = strings.TrimSuffix(key, "?")
	if key == "" {
		return false
	}
	for i, r := range key {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
