// Package interp turns compiled record models into live record types
// without generating code. It evaluates the predicate, normalization and
// default trees the Go emitter renders, through the same runtime helpers.
package interp

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/recgen/internal/compiler"
	"github.com/roach88/recgen/record"
)

// Registry holds the record types of one compilation unit.
type Registry struct {
	unit  *compiler.Unit
	types map[string]*record.Type
}

// Load declares and defines a type per record model. Types are declared
// before any is defined so field closures may reference each other; the
// closures themselves resolve on first use.
func Load(unit *compiler.Unit) *Registry {
	r := &Registry{unit: unit, types: make(map[string]*record.Type, len(unit.Records))}
	for _, m := range unit.Records {
		r.types[m.Name] = record.NewType(m.Name, m.Identity, m.Hash)
	}
	for _, m := range unit.Records {
		r.types[m.Name].Define(r.spec(m))
	}
	slog.Debug("interpreted records", "package", unit.Package, "records", len(unit.Records))
	return r
}

// Type returns the unbound type of the named record.
func (r *Registry) Type(name string) (*record.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns the record names in compilation order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.unit.Records))
	for i, m := range r.unit.Records {
		names[i] = m.Name
	}
	return names
}

// Resolve returns the type a reference denotes, binding generic
// arguments.
func (r *Registry) Resolve(ref compiler.TypeRef) (*record.Type, error) {
	t, ok := r.types[ref.Name]
	if !ok {
		return nil, fmt.Errorf("unknown record %q", ref.Name)
	}
	if len(ref.Args) == 0 {
		return t, nil
	}
	args := make([]*record.Type, len(ref.Args))
	for i, a := range ref.Args {
		at, err := r.Resolve(a)
		if err != nil {
			return nil, err
		}
		args[i] = at
	}
	return t.Bind(args...)
}

// Lookup resolves a type written as a reference expression, such as
// "Box<Name>", for command-line use.
func (r *Registry) Lookup(expr string) (*record.Type, error) {
	ref, err := parseRef(expr)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ref)
}

// mustResolve is used inside field factories, after compilation has
// checked every reference.
func (r *Registry) mustResolve(ref *compiler.TypeRef) *record.Type {
	t, err := r.Resolve(*ref)
	if err != nil {
		panic(fmt.Sprintf("interp: %v", err))
	}
	return t
}

func (r *Registry) spec(m *compiler.RecordModel) record.TypeSpec {
	spec := record.TypeSpec{Fields: make([]record.Field, len(m.Fields))}
	for i, f := range m.Fields {
		spec.Fields[i] = r.field(f)
	}
	for _, p := range m.Params {
		spec.Params = append(spec.Params, record.Param{Name: p.Name, Records: p.NeedsCtor})
	}
	if m.Envelope.Compact {
		spec.Compact = &record.Compact{Prefix: m.Envelope.Prefix}
	}
	return spec
}

func (r *Registry) field(f *compiler.FieldModel) record.Field {
	rf := record.Field{
		Name:               f.Name,
		Tag:                f.Tag,
		Type:               f.Type.String(),
		Kind:               f.Kind,
		Required:           f.Required,
		Nullable:           f.Nullable(),
		Readonly:           f.Readonly,
		UnionOfRecords:     f.UnionOfRecords,
		ElemUnionOfRecords: f.ElemUnionOfRecords,
		Check:              r.checker(f.Pred),
		Normalize:          r.normalizer(f.Norm),
		Elem:               r.normalizer(f.ElemNorm),
		Key:                r.normalizer(f.KeyNorm),
		Default:            r.defaulter(f.Default),
	}
	if f.Shape.Kind == compiler.ShapeParam {
		rf.Param = f.Shape.Param
	}
	return rf
}

// Models returns the compiled models, for callers that need reflection
// beyond record.Type.
func (r *Registry) Models() []*compiler.RecordModel { return slices.Clone(r.unit.Records) }
