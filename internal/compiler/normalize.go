package compiler

import (
	"fmt"
	"strings"
)

// NormKind is a node kind of the normalization tree.
type NormKind uint8

const (
	NormCanonical NormKind = iota + 1
	NormString
	NormInt
	NormFloat
	NormDate
	NormURI
	NormBinary
	NormRecord
	NormParam
	NormUnion
	NormMixed
	NormList
	NormSet
	NormMap
	NormOrNil
)

// Norm converts an accepted input form into the storage form. A nil
// *Norm is the identity.
type Norm struct {
	Kind    NormKind
	Record  *TypeRef
	Members []TypeRef
	Param   string
	Elem    *Norm // list/set element or map value
	Key     *Norm // map key
	Inner   *Norm // NormOrNil
}

var normNames = map[NormKind]string{
	NormCanonical: "canonical",
	NormString:    "string",
	NormInt:       "int",
	NormFloat:     "float",
	NormDate:      "date",
	NormURI:       "uri",
	NormBinary:    "binary",
}

// String renders the tree compactly, for tests and debug logs.
func (n *Norm) String() string {
	if n == nil {
		return "identity"
	}
	switch n.Kind {
	case NormRecord:
		return "record(" + n.Record.String() + ")"
	case NormParam:
		return "param(" + n.Param + ")"
	case NormUnion, NormMixed:
		names := make([]string, len(n.Members))
		for i, m := range n.Members {
			names[i] = m.String()
		}
		kind := "union"
		if n.Kind == NormMixed {
			kind = "mixed"
		}
		return kind + "(" + strings.Join(names, ", ") + ")"
	case NormList:
		return fmt.Sprintf("list(%s)", n.Elem)
	case NormSet:
		return fmt.Sprintf("set(%s)", n.Elem)
	case NormMap:
		return fmt.Sprintf("map(%s, %s)", n.Key, n.Elem)
	case NormOrNil:
		return "orNil(" + n.Inner.String() + ")"
	}
	return normNames[n.Kind]
}

// BuildNorm returns the normalization of a property. Values reaching it
// have passed the property's predicate.
func BuildNorm(p *Property) *Norm {
	inner := kindNorm(p)
	if p.Nullable() && inner != nil {
		return &Norm{Kind: NormOrNil, Inner: inner}
	}
	return inner
}

func kindNorm(p *Property) *Norm {
	sh := p.Shape
	switch sh.Kind {
	case ShapeAny:
		return &Norm{Kind: NormCanonical}
	case ShapeString:
		return &Norm{Kind: NormString}
	case ShapeInt:
		return &Norm{Kind: NormInt}
	case ShapeFloat:
		return &Norm{Kind: NormFloat}
	case ShapeLiteral:
		switch sh.Literal.(type) {
		case string:
			return &Norm{Kind: NormString}
		case bool:
			return nil
		}
		return &Norm{Kind: NormCanonical}
	case ShapeDate:
		return &Norm{Kind: NormDate}
	case ShapeURI:
		return &Norm{Kind: NormURI}
	case ShapeBinary:
		return &Norm{Kind: NormBinary}
	case ShapeRecord:
		return &Norm{Kind: NormRecord, Record: sh.Record}
	case ShapeParam:
		return &Norm{Kind: NormParam, Param: sh.Param}
	case ShapeRecordUnion:
		return &Norm{Kind: NormUnion, Members: sh.Members}
	case ShapeMixedUnion:
		if len(sh.Members) == 0 {
			return &Norm{Kind: NormCanonical}
		}
		return &Norm{Kind: NormMixed, Members: sh.Members}
	case ShapeList:
		return &Norm{Kind: NormList, Elem: BuildNorm(p.Elem)}
	case ShapeSet:
		return &Norm{Kind: NormSet, Elem: BuildNorm(p.Elem)}
	case ShapeMap:
		return &Norm{Kind: NormMap, Key: BuildNorm(p.MapKey), Elem: BuildNorm(p.Elem)}
	}
	return nil
}
