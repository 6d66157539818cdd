package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/recgen/internal/compiler"
	"github.com/roach88/recgen/record"
)

// The expressions below are evaluated inside field factories of the form
// func(t *record.Type) ..., so parameter lookups go through t.

// typeExpr renders the *record.Type a reference denotes.
func typeExpr(ref compiler.TypeRef) string {
	base := compiler.GoName(ref.Name) + "Type"
	if len(ref.Args) == 0 {
		return base
	}
	args := make([]string, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = typeExpr(a)
	}
	return "record.MustBind(" + base + ", " + strings.Join(args, ", ") + ")"
}

func typeExprs(refs []compiler.TypeRef) string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = typeExpr(r)
	}
	return strings.Join(out, ", ")
}

// predExpr renders a predicate as a record.Checker expression; "nil"
// accepts everything.
func predExpr(p *compiler.Pred) string {
	if p.IsTrue() {
		return "nil"
	}
	switch p.Kind {
	case compiler.PredString:
		return "record.IsString"
	case compiler.PredInt:
		return "record.IsInt"
	case compiler.PredFloat:
		return "record.IsFloat"
	case compiler.PredBool:
		return "record.IsBool"
	case compiler.PredDate:
		return "record.IsDate"
	case compiler.PredURI:
		return "record.IsURI"
	case compiler.PredBinary:
		return "record.IsBinary"
	case compiler.PredLiteral:
		return "record.IsLiteral(" + literalExpr(p.Literal) + ")"
	case compiler.PredRecord:
		return typeExpr(*p.Record) + ".Accepts"
	case compiler.PredParam:
		return fmt.Sprintf("t.ParamCheck(%q)", p.Param)
	case compiler.PredList:
		return "record.IsListOf(" + predExpr(p.Elem) + ")"
	case compiler.PredSet:
		return "record.IsSetOf(" + predExpr(p.Elem) + ")"
	case compiler.PredMap:
		return "record.IsMapOf(" + predExpr(p.Key) + ", " + predExpr(p.Elem) + ")"
	case compiler.PredAnyOf:
		parts := make([]string, len(p.Members))
		for i, m := range p.Members {
			parts[i] = predExpr(m)
		}
		return "record.AnyOf(" + strings.Join(parts, ", ") + ")"
	case compiler.PredOptional:
		return "record.Optional(" + predExpr(p.Inner) + ")"
	}
	panic(fmt.Sprintf("codegen: unknown predicate kind %d", p.Kind))
}

// normExpr renders a normalization as a record.Normalizer expression;
// "nil" is the identity.
func normExpr(n *compiler.Norm) string {
	if n == nil {
		return "nil"
	}
	switch n.Kind {
	case compiler.NormCanonical:
		return "record.ToCanonical"
	case compiler.NormString:
		return "record.ToString"
	case compiler.NormInt:
		return "record.ToInt"
	case compiler.NormFloat:
		return "record.ToFloat"
	case compiler.NormDate:
		return "record.ToDate"
	case compiler.NormURI:
		return "record.ToURI"
	case compiler.NormBinary:
		return "record.ToBinary"
	case compiler.NormRecord:
		return typeExpr(*n.Record) + ".Normalize"
	case compiler.NormParam:
		return fmt.Sprintf("t.ParamNormalizer(%q)", n.Param)
	case compiler.NormUnion:
		return "record.UnionOf(" + typeExprs(n.Members) + ")"
	case compiler.NormMixed:
		return "record.MixedOf(" + typeExprs(n.Members) + ")"
	case compiler.NormList:
		return "record.ToListOf(" + normExpr(n.Elem) + ")"
	case compiler.NormSet:
		return "record.ToSetOf(" + normExpr(n.Elem) + ")"
	case compiler.NormMap:
		return "record.ToMapOf(" + normExpr(n.Key) + ", " + normExpr(n.Elem) + ")"
	case compiler.NormOrNil:
		return "record.OrNil(" + normExpr(n.Inner) + ")"
	}
	panic(fmt.Sprintf("codegen: unknown normalization kind %d", n.Kind))
}

// defaultExpr renders the default of a required field; "" when it has
// none.
func defaultExpr(d compiler.Default) string {
	switch d.Kind {
	case compiler.DefaultValue:
		return literalExpr(d.Value)
	case compiler.DefaultDate:
		return "record.Date{}"
	case compiler.DefaultURI:
		return "record.URI{}"
	case compiler.DefaultBinary:
		return "record.Binary{}"
	case compiler.DefaultRecord:
		return typeExpr(*d.Record) + ".EmptyRecord()"
	case compiler.DefaultParam:
		return fmt.Sprintf("t.ParamDefault(%q)", d.Param)
	case compiler.DefaultList:
		return "record.NewList()"
	case compiler.DefaultSet:
		return "record.NewSet()"
	case compiler.DefaultMap:
		return "record.NewMap()"
	}
	return ""
}

// literalExpr renders a scalar with its storage type.
func literalExpr(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case int64:
		return fmt.Sprintf("int64(%d)", x)
	case float64:
		return "float64(" + strconv.FormatFloat(x, 'g', -1, 64) + ")"
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%#v", v)
}

var kindIdents = map[record.Kind]string{
	record.KindValue:  "record.KindValue",
	record.KindRecord: "record.KindRecord",
	record.KindUnion:  "record.KindUnion",
	record.KindList:   "record.KindList",
	record.KindSet:    "record.KindSet",
	record.KindMap:    "record.KindMap",
	record.KindParam:  "record.KindParam",
}
