package interp

import (
	"fmt"

	"github.com/roach88/recgen/internal/compiler"
	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/internal/typeexpr"
	"github.com/roach88/recgen/record"
)

// checker returns the field factory of a predicate; nil when it accepts
// everything.
func (r *Registry) checker(p *compiler.Pred) func(*record.Type) record.Checker {
	if p.IsTrue() {
		return nil
	}
	return func(t *record.Type) record.Checker { return r.evalPred(p, t) }
}

func (r *Registry) evalPred(p *compiler.Pred, t *record.Type) record.Checker {
	if p.IsTrue() {
		return nil
	}
	switch p.Kind {
	case compiler.PredString:
		return record.IsString
	case compiler.PredInt:
		return record.IsInt
	case compiler.PredFloat:
		return record.IsFloat
	case compiler.PredBool:
		return record.IsBool
	case compiler.PredDate:
		return record.IsDate
	case compiler.PredURI:
		return record.IsURI
	case compiler.PredBinary:
		return record.IsBinary
	case compiler.PredLiteral:
		return record.IsLiteral(p.Literal)
	case compiler.PredRecord:
		return r.mustResolve(p.Record).Accepts
	case compiler.PredParam:
		return t.ParamCheck(p.Param)
	case compiler.PredList:
		return record.IsListOf(r.evalPred(p.Elem, t))
	case compiler.PredSet:
		return record.IsSetOf(r.evalPred(p.Elem, t))
	case compiler.PredMap:
		return record.IsMapOf(r.evalPred(p.Key, t), r.evalPred(p.Elem, t))
	case compiler.PredAnyOf:
		cs := make([]record.Checker, len(p.Members))
		for i, m := range p.Members {
			cs[i] = r.evalPred(m, t)
		}
		return record.AnyOf(cs...)
	case compiler.PredOptional:
		return record.Optional(r.evalPred(p.Inner, t))
	}
	panic(fmt.Sprintf("interp: unknown predicate kind %d", p.Kind))
}

// normalizer returns the field factory of a normalization; nil for the
// identity.
func (r *Registry) normalizer(n *compiler.Norm) func(*record.Type) record.Normalizer {
	if n == nil {
		return nil
	}
	return func(t *record.Type) record.Normalizer { return r.evalNorm(n, t) }
}

func (r *Registry) evalNorm(n *compiler.Norm, t *record.Type) record.Normalizer {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case compiler.NormCanonical:
		return record.ToCanonical
	case compiler.NormString:
		return record.ToString
	case compiler.NormInt:
		return record.ToInt
	case compiler.NormFloat:
		return record.ToFloat
	case compiler.NormDate:
		return record.ToDate
	case compiler.NormURI:
		return record.ToURI
	case compiler.NormBinary:
		return record.ToBinary
	case compiler.NormRecord:
		return r.mustResolve(n.Record).Normalize
	case compiler.NormParam:
		return t.ParamNormalizer(n.Param)
	case compiler.NormUnion:
		return record.UnionOf(r.members(n.Members)...)
	case compiler.NormMixed:
		return record.MixedOf(r.members(n.Members)...)
	case compiler.NormList:
		return record.ToListOf(r.evalNorm(n.Elem, t))
	case compiler.NormSet:
		return record.ToSetOf(r.evalNorm(n.Elem, t))
	case compiler.NormMap:
		return record.ToMapOf(r.evalNorm(n.Key, t), r.evalNorm(n.Elem, t))
	case compiler.NormOrNil:
		return record.OrNil(r.evalNorm(n.Inner, t))
	}
	panic(fmt.Sprintf("interp: unknown normalization kind %d", n.Kind))
}

func (r *Registry) members(refs []compiler.TypeRef) []*record.Type {
	out := make([]*record.Type, len(refs))
	for i := range refs {
		out[i] = r.mustResolve(&refs[i])
	}
	return out
}

// defaulter returns the field factory of a default; nil when the field
// has none.
func (r *Registry) defaulter(d compiler.Default) func(*record.Type) any {
	switch d.Kind {
	case compiler.DefaultNone:
		return nil
	case compiler.DefaultValue:
		v := d.Value
		return func(*record.Type) any { return v }
	case compiler.DefaultDate:
		return func(*record.Type) any { return record.Date{} }
	case compiler.DefaultURI:
		return func(*record.Type) any { return record.URI{} }
	case compiler.DefaultBinary:
		return func(*record.Type) any { return record.Binary{} }
	case compiler.DefaultRecord:
		ref := d.Record
		return func(*record.Type) any { return r.mustResolve(ref).EmptyRecord() }
	case compiler.DefaultParam:
		name := d.Param
		return func(t *record.Type) any { return t.ParamDefault(name) }
	case compiler.DefaultList:
		return func(*record.Type) any { return record.NewList() }
	case compiler.DefaultSet:
		return func(*record.Type) any { return record.NewSet() }
	case compiler.DefaultMap:
		return func(*record.Type) any { return record.NewMap() }
	}
	return nil
}

// parseRef parses a record reference such as "Box<Name>".
func parseRef(expr string) (compiler.TypeRef, error) {
	t, err := typeexpr.Parse(expr)
	if err != nil {
		return compiler.TypeRef{}, err
	}
	return toRef(t)
}

func toRef(t ir.TypeExpr) (compiler.TypeRef, error) {
	ref, ok := t.(ir.Ref)
	if !ok {
		return compiler.TypeRef{}, fmt.Errorf("%s is not a record reference", t)
	}
	out := compiler.TypeRef{Name: ref.Name}
	for _, a := range ref.Args {
		ar, err := toRef(a)
		if err != nil {
			return compiler.TypeRef{}, err
		}
		out.Args = append(out.Args, ar)
	}
	return out, nil
}
