package ir

import "fmt"

// Pos is a source position inside a schema file.
type Pos struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	switch {
	case !p.IsValid():
		return p.File
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// FieldDecl is one field of a record declaration, in declaration order.
// Key is the raw key text ("1:first", "note?"); the compiler parses the
// tag and name out of it.
type FieldDecl struct {
	Key      string
	Type     TypeExpr
	Optional bool
	Pos      Pos
}

// ParamDecl declares a type parameter. Constraint is "record" when the
// parameter ranges over record types and empty otherwise.
type ParamDecl struct {
	Name       string
	Constraint string
}

// ConstraintRecord restricts a type parameter to record types.
const ConstraintRecord = "record"

// Compact requests the bare-string wire form for a record.
type Compact struct {
	Enabled bool
	Prefix  string
}

// RecordDecl is a loaded record type declaration.
type RecordDecl struct {
	Name     string
	Identity string
	Fields   []FieldDecl
	Params   []ParamDecl
	Readonly []string
	Compact  Compact
	Pos      Pos
}

// Param returns the parameter declared with name.
func (d *RecordDecl) Param(name string) (ParamDecl, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamDecl{}, false
}

// IsReadonly reports whether name is listed as readonly.
func (d *RecordDecl) IsReadonly(name string) bool {
	for _, r := range d.Readonly {
		if r == name {
			return true
		}
	}
	return false
}

// canonical renders the declaration as an IRObject for hashing.
// Positions are excluded so moving a declaration does not change its hash.
func (d *RecordDecl) canonical() IRObject {
	fields := make(IRArray, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = IRObject{
			"key":      IRString(f.Key),
			"type":     IRString(f.Type.String()),
			"optional": IRBool(f.Optional),
		}
	}
	params := make(IRArray, len(d.Params))
	for i, p := range d.Params {
		params[i] = IRObject{
			"name":       IRString(p.Name),
			"constraint": IRString(p.Constraint),
		}
	}
	readonly := make(IRArray, len(d.Readonly))
	for i, r := range d.Readonly {
		readonly[i] = IRString(r)
	}
	return IRObject{
		"name":     IRString(d.Name),
		"identity": IRString(d.Identity),
		"fields":   fields,
		"params":   params,
		"readonly": readonly,
		"compact": IRObject{
			"enabled": IRBool(d.Compact.Enabled),
			"prefix":  IRString(d.Compact.Prefix),
		},
	}
}
