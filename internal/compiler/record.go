package compiler

import (
	"fmt"

	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/record"
)

// RecordModel is the compiled form of one record type, consumed by the
// Go emitter and the interpreter.
type RecordModel struct {
	Name        string
	GoName      string
	Identity    string
	Hash        string
	Fields      []*FieldModel
	Params      []TypeParam
	Envelope    Envelope
	Binding     *Binding
	Synthesized bool
	Decl        *ir.RecordDecl
}

// TypeVar is the name of the package-level *record.Type variable.
func (m *RecordModel) TypeVar() string { return m.GoName + "Type" }

// FieldConst is the name of the generated index constant of field f.
func (m *RecordModel) FieldConst(f *FieldModel) string { return goPrivate(m.GoName) + f.GoName }

// Generic reports whether the record has type parameters.
func (m *RecordModel) Generic() bool { return len(m.Params) > 0 }

// Field returns the field model named name.
func (m *RecordModel) Field(name string) *FieldModel {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldModel is one field with everything the emitters need.
type FieldModel struct {
	*Property
	Index  int
	GoName string
	Kind   record.Kind

	Pred     *Pred
	Norm     *Norm
	ElemNorm *Norm // list/set elements, map values
	KeyNorm  *Norm // map keys

	UnionOfRecords     bool
	ElemUnionOfRecords bool

	Mutators []Mutator
}

// Optional reports whether the accessor returns (T, bool).
func (f *FieldModel) Optional() bool { return !f.Required || f.Nullable() }

// MutatorOp names a mutator; each maps onto one record.Instance method.
type MutatorOp string

const (
	OpSet         MutatorOp = "Set"
	OpUnset       MutatorOp = "Unset"
	OpPush        MutatorOp = "Push"
	OpPop         MutatorOp = "Pop"
	OpShift       MutatorOp = "Shift"
	OpUnshift     MutatorOp = "Unshift"
	OpSplice      MutatorOp = "Splice"
	OpReverse     MutatorOp = "Reverse"
	OpSort        MutatorOp = "Sort"
	OpFill        MutatorOp = "Fill"
	OpCopyWithin  MutatorOp = "CopyWithin"
	OpFilter      MutatorOp = "Filter"
	OpAdd         MutatorOp = "Add"
	OpAddAll      MutatorOp = "AddAll"
	OpDelete      MutatorOp = "Delete"
	OpDeleteAll   MutatorOp = "DeleteAll"
	OpClear       MutatorOp = "Clear"
	OpMapValues   MutatorOp = "MapValues"
	OpUpdate      MutatorOp = "Update"
	OpSetEntry    MutatorOp = "SetEntry"
	OpDeleteEntry MutatorOp = "DeleteEntry"
	OpMerge       MutatorOp = "Merge"
	OpUpdateEntry MutatorOp = "UpdateEntry"
	OpMapEntries  MutatorOp = "MapEntries"
	OpFilterEntry MutatorOp = "FilterEntries"
)

// Mutator is one generated mutation method.
type Mutator struct {
	Op     MutatorOp
	Method string
}

var (
	listOps = []MutatorOp{OpPush, OpPop, OpShift, OpUnshift, OpSplice, OpReverse, OpSort, OpFill, OpCopyWithin, OpFilter}
	setOps  = []MutatorOp{OpAdd, OpAddAll, OpDelete, OpDeleteAll, OpClear, OpFilter, OpMapValues, OpUpdate}
	mapOps  = []MutatorOp{OpSetEntry, OpDeleteEntry, OpClear, OpMerge, OpUpdateEntry, OpMapEntries, OpFilterEntry}
)

// methodName builds the generated method for op on field goName.
func methodName(op MutatorOp, goName string) string {
	switch op {
	case OpSetEntry:
		return "Set" + goName + "Entry"
	case OpDeleteEntry:
		return "Delete" + goName + "Entry"
	case OpUpdateEntry:
		return "Update" + goName + "Entry"
	case OpMapEntries:
		return "Map" + goName + "Entries"
	case OpFilterEntry:
		return "Filter" + goName + "Entries"
	case OpMapValues:
		return "Map" + goName
	}
	return string(op) + goName
}

func mutatorsOf(f *FieldModel) []Mutator {
	if f.Readonly {
		return nil
	}
	ops := []MutatorOp{OpSet}
	if f.Optional() {
		ops = append(ops, OpUnset)
	}
	switch f.Shape.Kind {
	case ShapeList:
		ops = append(ops, listOps...)
	case ShapeSet:
		ops = append(ops, setOps...)
	case ShapeMap:
		ops = append(ops, mapOps...)
	}
	out := make([]Mutator, len(ops))
	for i, op := range ops {
		out[i] = Mutator{Op: op, Method: methodName(op, f.GoName)}
	}
	return out
}

// wrapperMethods are defined on every generated record type.
var wrapperMethods = []string{
	"RecordType", "Instance", "Encode", "EncodeTagged", "EncodeCompact",
	"MarshalJSON", "UnmarshalJSON", "WithChild", "Children", "Set", "Equal", "String",
}

func kindOf(sh ShapeKind) record.Kind {
	switch sh {
	case ShapeRecord:
		return record.KindRecord
	case ShapeParam:
		return record.KindParam
	case ShapeRecordUnion:
		return record.KindUnion
	case ShapeList:
		return record.KindList
	case ShapeSet:
		return record.KindSet
	case ShapeMap:
		return record.KindMap
	}
	return record.KindValue
}

// buildRecord runs the descriptor, predicate, normalization, envelope and
// binding builders for one declaration. The first error is fatal to it.
func buildRecord(ctx *Context, decl *ir.RecordDecl) (*RecordModel, error) {
	hash, err := ir.DeclHash(decl)
	if err != nil {
		return nil, &CompileError{Record: decl.Name, Code: ErrLoad, Message: err.Error(), Pos: decl.Pos}
	}
	m := &RecordModel{
		Name:        decl.Name,
		GoName:      GoName(decl.Name),
		Identity:    ctx.Identity(decl),
		Hash:        hash,
		Params:      buildParams(decl),
		Synthesized: ctx.Synthesized(decl.Name),
		Decl:        decl,
	}
	m.Binding = buildBinding(m.GoName, m.Params)

	seenParams := make(map[string]bool, len(decl.Params))
	for _, p := range decl.Params {
		if seenParams[p.Name] {
			return nil, &CompileError{Record: decl.Name, Code: ErrInvalidParam, Message: fmt.Sprintf("type parameter %s declared twice", p.Name), Pos: decl.Pos}
		}
		seenParams[p.Name] = true
	}

	d := describer{sc: scope{ctx: ctx, decl: decl}}
	names := make(map[string]bool, len(decl.Fields))
	tags := make(map[int]string)
	for i, f := range decl.Fields {
		p, err := d.field(f)
		if err != nil {
			return nil, fieldError(decl, f, err)
		}
		if names[p.Name] {
			return nil, &CompileError{Record: decl.Name, Field: p.Name, Code: ErrDuplicateField, Message: "field declared twice", Pos: f.Pos}
		}
		names[p.Name] = true
		if p.Tag > 0 {
			if prev, dup := tags[p.Tag]; dup {
				return nil, &CompileError{
					Record:  decl.Name,
					Field:   p.Name,
					Code:    ErrDuplicateTag,
					Message: fmt.Sprintf("tag %d already used by %s", p.Tag, prev),
					Pos:     f.Pos,
				}
			}
			tags[p.Tag] = p.Name
		}
		m.Fields = append(m.Fields, newFieldModel(p, i))
	}

	for _, ro := range decl.Readonly {
		if !names[ro] {
			return nil, &CompileError{Record: decl.Name, Field: ro, Code: ErrUnknownReadonly, Message: "readonly names an undeclared field", Pos: decl.Pos}
		}
	}

	if m.Envelope, err = buildEnvelope(decl, m.Fields); err != nil {
		return nil, err
	}
	if err := checkMethodNames(m); err != nil {
		return nil, err
	}
	return m, nil
}

func newFieldModel(p *Property, index int) *FieldModel {
	f := &FieldModel{
		Property: p,
		Index:    index,
		GoName:   GoName(p.Name),
		Kind:     kindOf(p.Shape.Kind),
		Pred:     BuildPredicate(p),
		Norm:     BuildNorm(p),
	}
	f.UnionOfRecords = p.Shape.Kind == ShapeRecordUnion
	if p.Elem != nil {
		f.ElemNorm = BuildNorm(p.Elem)
		f.ElemUnionOfRecords = p.Elem.Shape.Kind == ShapeRecordUnion
	}
	if p.MapKey != nil {
		f.KeyNorm = BuildNorm(p.MapKey)
	}
	f.Mutators = mutatorsOf(f)
	return f
}

// checkMethodNames rejects fields whose accessors or mutators collide with
// each other or with the fixed wrapper methods.
func checkMethodNames(m *RecordModel) error {
	owner := make(map[string]string)
	for _, w := range wrapperMethods {
		owner[w] = "the record type"
	}
	claim := func(f *FieldModel, method string) error {
		if prev, taken := owner[method]; taken {
			return &CompileError{
				Record:  m.Name,
				Field:   f.Name,
				Code:    ErrNameCollision,
				Message: fmt.Sprintf("method %s collides with %s", method, prev),
				Pos:     f.Pos,
			}
		}
		owner[method] = "field " + f.Name
		return nil
	}
	for _, f := range m.Fields {
		if err := claim(f, f.GoName); err != nil {
			return err
		}
		for _, mu := range f.Mutators {
			if err := claim(f, mu.Method); err != nil {
				return err
			}
		}
	}
	return nil
}

// fieldError attributes a builder error to the field being described.
func fieldError(decl *ir.RecordDecl, f ir.FieldDecl, err error) *CompileError {
	ce := asCompileError(err, decl.Name)
	if ce.Field == "" {
		ce.Field = f.Key
	}
	if !ce.Pos.IsValid() {
		ce.Pos = f.Pos
	}
	return ce
}
