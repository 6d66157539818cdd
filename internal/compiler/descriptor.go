package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/recgen/internal/ir"
)

// Property describes one field (or, without a name, one element, key or
// union member position). Built once, read-only afterwards.
type Property struct {
	Name     string
	Key      string // as declared, e.g. "1:first"
	Tag      int    // 0 when untagged
	Required bool
	Readonly bool
	Pos      ir.Pos

	Type  ir.TypeExpr // with inline literals replaced by their records
	Shape Shape

	Elem    *Property   // list/set element or map value
	MapKey  *Property   // map key
	Members []*Property // union members, in order

	// Go type forms: storage is what the instance slot holds, input what
	// setters take, display what accessors return.
	Storage string
	Input   string
	Display string

	Default Default
}

// Nullable reports whether null is an accepted value.
func (p *Property) Nullable() bool { return p.Shape.Nullable }

// DefaultKind says how a required field is filled in the empty instance.
type DefaultKind uint8

const (
	DefaultNone DefaultKind = iota
	DefaultValue
	DefaultDate
	DefaultURI
	DefaultBinary
	DefaultRecord
	DefaultParam
	DefaultList
	DefaultSet
	DefaultMap
)

// Default is the value of a required field in the empty instance.
type Default struct {
	Kind   DefaultKind
	Value  any      // DefaultValue: string, int64, float64 or bool
	Record *TypeRef // DefaultRecord
	Param  string   // DefaultParam
}

// ParseFieldKey splits a field key into name, positional tag and the
// optional marker: "2:second?" -> ("second", 2, true).
func ParseFieldKey(key string) (name string, tag int, optional bool, err error) {
	name = key
	if strings.HasSuffix(name, "?") {
		optional = true
		name = strings.TrimSuffix(name, "?")
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		n, convErr := strconv.Atoi(name[:i])
		if convErr != nil {
			return "", 0, false, &CompileError{Code: ErrInvalidTag, Message: fmt.Sprintf("tag %q in key %q is not an integer", name[:i], key)}
		}
		if n <= 0 {
			return "", 0, false, &CompileError{Code: ErrInvalidTag, Message: fmt.Sprintf("tag %d in key %q must be positive", n, key)}
		}
		tag, name = n, name[i+1:]
	}
	if strings.HasPrefix(name, "$") || !identRe.MatchString(name) {
		return "", 0, false, &CompileError{Code: ErrInvalidFieldKey, Message: fmt.Sprintf("field name %q must match [A-Za-z_][A-Za-z0-9_]*", name)}
	}
	return name, tag, optional, nil
}

// describer builds the properties of one declaration.
type describer struct {
	sc scope
}

// field builds the property of a declared field.
func (d describer) field(f ir.FieldDecl) (*Property, error) {
	name, tag, optional, err := ParseFieldKey(f.Key)
	if err != nil {
		return nil, err
	}
	lifted, err := d.lift(f.Type, d.sc.decl.Name+GoName(name), f.Pos)
	if err != nil {
		return nil, err
	}
	p, err := d.describe(lifted)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Key = f.Key
	p.Tag = tag
	p.Required = !(optional || f.Optional)
	p.Readonly = d.sc.decl.IsReadonly(name)
	p.Pos = f.Pos
	return p, nil
}

// lift replaces inline record literals with references to synthesized
// records named after their position: <Parent><Field>, plus Item for
// elements, Key and Value for map entries, and a counter for the second
// and later literals of one union.
func (d describer) lift(t ir.TypeExpr, base string, pos ir.Pos) (ir.TypeExpr, error) {
	switch x := t.(type) {
	case ir.InlineRecord:
		rec, err := d.sc.ctx.synthesize(base, x, pos)
		if err != nil {
			return nil, err
		}
		return ir.Ref{Name: rec.Name}, nil
	case ir.Nullable:
		inner, err := d.lift(x.Inner, base, pos)
		if err != nil {
			return nil, err
		}
		return ir.Nullable{Inner: inner}, nil
	case ir.ArrayOf:
		elem, err := d.lift(x.Elem, base+"Item", pos)
		if err != nil {
			return nil, err
		}
		return ir.ArrayOf{Elem: elem, Alias: x.Alias}, nil
	case ir.SetOf:
		elem, err := d.lift(x.Elem, base+"Item", pos)
		if err != nil {
			return nil, err
		}
		return ir.SetOf{Elem: elem, Alias: x.Alias}, nil
	case ir.MapOf:
		key, err := d.lift(x.Key, base+"Key", pos)
		if err != nil {
			return nil, err
		}
		val, err := d.lift(x.Value, base+"Value", pos)
		if err != nil {
			return nil, err
		}
		return ir.MapOf{Key: key, Value: val, Alias: x.Alias}, nil
	case ir.Union:
		members := make([]ir.TypeExpr, len(x.Members))
		inline := 0
		for i, m := range x.Members {
			name := base
			if _, ok := m.(ir.InlineRecord); ok {
				inline++
				if inline > 1 {
					name += strconv.Itoa(inline)
				}
			}
			lm, err := d.lift(m, name, pos)
			if err != nil {
				return nil, err
			}
			members[i] = lm
		}
		return ir.Union{Members: members}, nil
	case ir.Ref:
		if len(x.Args) == 0 {
			return x, nil
		}
		args := make([]ir.TypeExpr, len(x.Args))
		for i, a := range x.Args {
			la, err := d.lift(a, base+"Arg", pos)
			if err != nil {
				return nil, err
			}
			args[i] = la
		}
		return ir.Ref{Name: x.Name, Args: args}, nil
	}
	return t, nil
}

// describe classifies a lifted type expression and builds its
// sub-descriptors, Go type forms and default.
func (d describer) describe(t ir.TypeExpr) (*Property, error) {
	sh, err := Classify(t, d.sc)
	if err != nil {
		return nil, err
	}
	p := &Property{Type: t, Shape: sh}
	switch sh.Kind {
	case ShapeList, ShapeSet:
		if p.Elem, err = d.describe(sh.Elem); err != nil {
			return nil, err
		}
	case ShapeMap:
		if p.MapKey, err = d.describe(sh.Key); err != nil {
			return nil, err
		}
		if p.Elem, err = d.describe(sh.Elem); err != nil {
			return nil, err
		}
	case ShapeRecordUnion, ShapeMixedUnion:
		for _, m := range sh.Union {
			mp, err := d.describe(m)
			if err != nil {
				return nil, err
			}
			p.Members = append(p.Members, mp)
		}
	}
	p.Storage, p.Input, p.Display = goForms(p, d.sc)
	p.Default = defaultOf(p)
	return p, nil
}

// goForms returns the storage, input and display Go types.
func goForms(p *Property, sc scope) (storage, input, display string) {
	sh := p.Shape
	switch sh.Kind {
	case ShapeString:
		return "string", "string", "string"
	case ShapeInt:
		return "int64", "int64", "int64"
	case ShapeFloat:
		return "float64", "float64", "float64"
	case ShapeBool:
		return "bool", "bool", "bool"
	case ShapeLiteral:
		t := literalGoType(sh.Literal)
		return t, t, t
	case ShapeDate:
		return "record.Date", "any", "time.Time"
	case ShapeURI:
		return "record.URI", "any", "*url.URL"
	case ShapeBinary:
		return "record.Binary", "any", "[]byte"
	case ShapeRecord:
		g := GoName(sh.Record.Name)
		return g, "any", g
	case ShapeParam:
		if pd, ok := sc.param(sh.Param); ok && pd.Constraint == ir.ConstraintRecord {
			return "record.Record", "any", "record.Record"
		}
		return "any", "any", "any"
	case ShapeRecordUnion:
		return "record.Record", "any", "record.Record"
	case ShapeList:
		return "*record.List", "any", "[]" + p.Elem.ItemType()
	case ShapeSet:
		return "*record.Set", "any", "[]" + p.Elem.ItemType()
	case ShapeMap:
		return "*record.Map", "any", "*record.Map"
	}
	return "any", "any", "any"
}

// ItemType is the Go type of the property as a container element; null
// elements need an interface.
func (p *Property) ItemType() string {
	if p.Nullable() {
		return "any"
	}
	return p.Storage
}

func literalGoType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int64:
		return "int64"
	case float64:
		return "float64"
	case bool:
		return "bool"
	}
	return "any"
}

func defaultOf(p *Property) Default {
	sh := p.Shape
	switch sh.Kind {
	case ShapeString:
		return Default{Kind: DefaultValue, Value: ""}
	case ShapeInt:
		return Default{Kind: DefaultValue, Value: int64(0)}
	case ShapeFloat:
		return Default{Kind: DefaultValue, Value: float64(0)}
	case ShapeBool:
		return Default{Kind: DefaultValue, Value: false}
	case ShapeLiteral:
		return Default{Kind: DefaultValue, Value: sh.Literal}
	case ShapeDate:
		return Default{Kind: DefaultDate}
	case ShapeURI:
		return Default{Kind: DefaultURI}
	case ShapeBinary:
		return Default{Kind: DefaultBinary}
	case ShapeRecord:
		return Default{Kind: DefaultRecord, Record: sh.Record}
	case ShapeParam:
		return Default{Kind: DefaultParam, Param: sh.Param}
	case ShapeRecordUnion, ShapeMixedUnion:
		if len(p.Members) > 0 {
			return p.Members[0].Default
		}
	case ShapeList:
		return Default{Kind: DefaultList}
	case ShapeSet:
		return Default{Kind: DefaultSet}
	case ShapeMap:
		return Default{Kind: DefaultMap}
	}
	return Default{}
}
