package compiler

import (
	"fmt"
	"strings"
)

// PredKind is a node kind of the validation predicate tree.
type PredKind uint8

const (
	PredTrue PredKind = iota
	PredString
	PredInt
	PredFloat
	PredBool
	PredDate
	PredURI
	PredBinary
	PredLiteral
	PredRecord
	PredParam
	PredList
	PredSet
	PredMap
	PredAnyOf
	PredOptional
)

// Pred is a validation predicate. Emitters render it as a record.Checker
// expression; the interpreter evaluates it into one.
type Pred struct {
	Kind    PredKind
	Literal any
	Record  *TypeRef
	Param   string
	Elem    *Pred // list/set element or map value; nil checks shape only
	Key     *Pred // map key; nil checks shape only
	Members []*Pred
	Inner   *Pred // PredOptional
}

// True is the trivially-true predicate. Emitters omit the check.
var True = &Pred{Kind: PredTrue}

// IsTrue reports whether p accepts every non-null value.
func (p *Pred) IsTrue() bool { return p == nil || p.Kind == PredTrue }

// String renders the tree compactly, for tests and debug logs.
func (p *Pred) String() string {
	if p.IsTrue() {
		return "true"
	}
	switch p.Kind {
	case PredLiteral:
		return fmt.Sprintf("literal(%#v)", p.Literal)
	case PredRecord:
		return "record(" + p.Record.String() + ")"
	case PredParam:
		return "param(" + p.Param + ")"
	case PredList, PredSet:
		return fmt.Sprintf("%s(%s)", predNames[p.Kind], p.Elem)
	case PredMap:
		return fmt.Sprintf("map(%s, %s)", p.Key, p.Elem)
	case PredAnyOf:
		parts := make([]string, len(p.Members))
		for i, m := range p.Members {
			parts[i] = m.String()
		}
		return "anyOf(" + strings.Join(parts, ", ") + ")"
	case PredOptional:
		return "optional(" + p.Inner.String() + ")"
	}
	return predNames[p.Kind]
}

var predNames = map[PredKind]string{
	PredString: "string",
	PredInt:    "int",
	PredFloat:  "float",
	PredBool:   "bool",
	PredDate:   "date",
	PredURI:    "uri",
	PredBinary: "binary",
	PredList:   "list",
	PredSet:    "set",
}

// BuildPredicate returns the validation predicate of a property.
func BuildPredicate(p *Property) *Pred {
	inner := kindPredicate(p)
	if p.Nullable() && !inner.IsTrue() {
		return &Pred{Kind: PredOptional, Inner: inner}
	}
	return inner
}

func kindPredicate(p *Property) *Pred {
	sh := p.Shape
	switch sh.Kind {
	case ShapeString:
		return &Pred{Kind: PredString}
	case ShapeInt:
		return &Pred{Kind: PredInt}
	case ShapeFloat:
		return &Pred{Kind: PredFloat}
	case ShapeBool:
		return &Pred{Kind: PredBool}
	case ShapeDate:
		return &Pred{Kind: PredDate}
	case ShapeURI:
		return &Pred{Kind: PredURI}
	case ShapeBinary:
		return &Pred{Kind: PredBinary}
	case ShapeLiteral:
		return &Pred{Kind: PredLiteral, Literal: sh.Literal}
	case ShapeRecord:
		return &Pred{Kind: PredRecord, Record: sh.Record}
	case ShapeParam:
		return &Pred{Kind: PredParam, Param: sh.Param}
	case ShapeRecordUnion, ShapeMixedUnion:
		members := make([]*Pred, 0, len(p.Members))
		for _, m := range p.Members {
			mp := BuildPredicate(m)
			if mp.IsTrue() {
				return True
			}
			members = append(members, mp)
		}
		if len(members) == 1 {
			return members[0]
		}
		return &Pred{Kind: PredAnyOf, Members: members}
	case ShapeList:
		return &Pred{Kind: PredList, Elem: nonTrivial(BuildPredicate(p.Elem))}
	case ShapeSet:
		return &Pred{Kind: PredSet, Elem: nonTrivial(BuildPredicate(p.Elem))}
	case ShapeMap:
		return &Pred{
			Kind: PredMap,
			Key:  nonTrivial(BuildPredicate(p.MapKey)),
			Elem: nonTrivial(BuildPredicate(p.Elem)),
		}
	}
	return True
}

// nonTrivial drops a trivially-true element predicate so only the
// container shape is checked.
func nonTrivial(p *Pred) *Pred {
	if p.IsTrue() {
		return nil
	}
	return p
}
