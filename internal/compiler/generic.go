package compiler

import "github.com/roach88/recgen/internal/ir"

// TypeParam is a declared type parameter. NeedsCtor is true when the
// parameter ranges over record types, so binding it supplies a
// constructor that validates and rebuilds parameter-typed values.
type TypeParam struct {
	Name       string
	GoName     string
	Constraint string
	NeedsCtor  bool
}

// Binding describes the Bind<T> entry point of a parameterized record.
type Binding struct {
	Func   string
	Params []TypeParam
}

func buildParams(decl *ir.RecordDecl) []TypeParam {
	params := make([]TypeParam, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = TypeParam{
			Name:       p.Name,
			GoName:     goPrivate(p.Name),
			Constraint: p.Constraint,
			NeedsCtor:  p.Constraint == ir.ConstraintRecord,
		}
	}
	return params
}

func buildBinding(goName string, params []TypeParam) *Binding {
	if len(params) == 0 {
		return nil
	}
	return &Binding{Func: "Bind" + goName, Params: params}
}
