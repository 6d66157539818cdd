package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/recgen/internal/compiler"
)

// renderRecord writes the declaration, wrapper type and methods of one
// record.
func renderRecord(e *Emitter, m *compiler.RecordModel) {
	renderType(e, m)
	e.Blank()
	renderConstructors(e, m)
	renderWrapperMethods(e, m)
	for _, f := range m.Fields {
		renderAccessor(e, m, f)
		for _, mu := range f.Mutators {
			renderMutator(e, m, f, mu)
		}
	}
}

func renderType(e *Emitter, m *compiler.RecordModel) {
	e.Doc(fmt.Sprintf("%s is the record type of %s.", m.TypeVar(), m.GoName))
	e.Line("var %s = record.NewType(%q, %q, %q)", m.TypeVar(), m.Name, m.Identity, m.Hash)
	e.Blank()

	if len(m.Fields) > 0 {
		e.Line("const (")
		for _, f := range m.Fields {
			e.Line("%s = %d", m.FieldConst(f), f.Index)
		}
		e.Line(")")
		e.Blank()
	}

	e.Block("func init()")
	e.Open("%s.Define(record.TypeSpec{", m.TypeVar())
	if m.Generic() {
		e.Line("Params: []record.Param{")
		for _, p := range m.Params {
			e.Line("{Name: %q, Records: %t},", p.Name, p.NeedsCtor)
		}
		e.Line("},")
	}
	if m.Envelope.Compact {
		e.Line("Compact: &record.Compact{Prefix: %q},", m.Envelope.Prefix)
	}
	e.Line("Fields: []record.Field{")
	for _, f := range m.Fields {
		renderField(e, f)
	}
	e.Line("},")
	e.Line("Wrap: func(in *record.Instance) record.Record { return %s{inst: in} },", m.GoName)
	e.EndBlockSuffix(")")
	e.EndBlock()
}

func renderField(e *Emitter, f *compiler.FieldModel) {
	e.Line("{")
	attrs := []string{fmt.Sprintf("Name: %q", f.Name)}
	if f.Tag > 0 {
		attrs = append(attrs, fmt.Sprintf("Tag: %d", f.Tag))
	}
	attrs = append(attrs, fmt.Sprintf("Type: %q", f.Type.String()), "Kind: "+kindIdents[f.Kind])
	flag := func(name string, on bool) {
		if on {
			attrs = append(attrs, name+": true")
		}
	}
	flag("Required", f.Required)
	flag("Nullable", f.Nullable())
	flag("Readonly", f.Readonly)
	flag("UnionOfRecords", f.UnionOfRecords)
	flag("ElemUnionOfRecords", f.ElemUnionOfRecords)
	if f.Shape.Kind == compiler.ShapeParam {
		attrs = append(attrs, fmt.Sprintf("Param: %q", f.Shape.Param))
	}
	e.Line("%s,", strings.Join(attrs, ", "))

	if !f.Pred.IsTrue() {
		e.Line("Check: func(t *record.Type) record.Checker { return %s },", predExpr(f.Pred))
	}
	if f.Norm != nil {
		e.Line("Normalize: func(t *record.Type) record.Normalizer { return %s },", normExpr(f.Norm))
	}
	if f.ElemNorm != nil {
		e.Line("Elem: func(t *record.Type) record.Normalizer { return %s },", normExpr(f.ElemNorm))
	}
	if f.KeyNorm != nil {
		e.Line("Key: func(t *record.Type) record.Normalizer { return %s },", normExpr(f.KeyNorm))
	}
	if f.Required && !f.Nullable() {
		if d := defaultExpr(f.Default); d != "" {
			e.Line("Default: func(t *record.Type) any { return %s },", d)
		}
	}
	e.Line("},")
}

func renderConstructors(e *Emitter, m *compiler.RecordModel) {
	x := m.GoName
	e.Doc(fmt.Sprintf("%s is an immutable %s record. The zero value is the empty record.", x, m.Identity))
	e.Block("type %s struct", x)
	e.Line("inst *record.Instance")
	e.EndBlock()
	e.Blank()
	e.Line("var _ record.Record = %s{}", x)
	e.Blank()

	e.Doc(fmt.Sprintf("New%s builds a %s from field values keyed by name or tag.\nMissing required fields take their defaults.", x, x))
	e.Block("func New%s(fields record.Fields) (%s, error)", x, x)
	e.Line("return %s{}.wrap(%s.New(fields))", x, m.TypeVar())
	e.EndBlock()
	e.Blank()

	e.Doc(fmt.Sprintf("Empty%s returns the empty %s.", x, x))
	e.Block("func Empty%s() %s", x, x)
	e.Line("return %s{inst: %s.Empty()}", x, m.TypeVar())
	e.EndBlock()
	e.Blank()

	e.Doc(fmt.Sprintf("Decode%s builds a %s from any wire form: plain entries, a tagged\nenvelope%s or JSON bytes.", x, x, compactNote(m)))
	e.Block("func Decode%s(data any) (%s, error)", x, x)
	e.Line("return %s{}.wrap(%s.Decode(data))", x, m.TypeVar())
	e.EndBlock()
	e.Blank()

	e.Doc(fmt.Sprintf("Is%s reports whether v is a %s record.", x, x))
	e.Block("func Is%s(v any) bool", x)
	e.Line("return %s.IsInstance(v)", m.TypeVar())
	e.EndBlock()
	e.Blank()

	e.Doc(fmt.Sprintf("As%s converts a record of type %s, such as a union member, to %s.", x, x, x))
	e.Block("func As%s(v any) (%s, bool)", x, x)
	e.Block("if !%s.IsInstance(v)", m.TypeVar())
	e.Line("return %s{}, false", x)
	e.EndBlock()
	e.Line("return %s{inst: v.(record.Record).Instance()}, true", x)
	e.EndBlock()
	e.Blank()

	if b := m.Binding; b != nil {
		params := make([]string, len(b.Params))
		args := make([]string, len(b.Params))
		for i, p := range b.Params {
			args[i] = paramArg(p)
			params[i] = args[i] + " *record.Type"
		}
		e.Doc(fmt.Sprintf("%s returns %s with its type parameters bound. Parameter-typed\nfields of the result validate against and construct through the\narguments.", b.Func, x))
		e.Block("func %s(%s) (*record.Type, error)", b.Func, strings.Join(params, ", "))
		e.Line("return %s.Bind(%s)", m.TypeVar(), strings.Join(args, ", "))
		e.EndBlock()
		e.Blank()
	}
}

// paramArg keeps parameter names clear of the runtime package name.
func paramArg(p compiler.TypeParam) string {
	switch p.GoName {
	case "record", "url", "time", "iter":
		return p.GoName + "Arg"
	}
	return p.GoName
}

func compactNote(m *compiler.RecordModel) string {
	if !m.Envelope.Compact {
		return ""
	}
	return ", the compact string"
}

func renderWrapperMethods(e *Emitter, m *compiler.RecordModel) {
	x := m.GoName
	e.Block("func (%s) wrap(in *record.Instance, err error) (%s, error)", x, x)
	e.Block("if err != nil")
	e.Line("return %s{}, err", x)
	e.EndBlock()
	e.Line("return %s{inst: in}, nil", x)
	e.EndBlock()
	e.Blank()

	e.Doc("Instance returns the underlying instance.")
	e.Block("func (x %s) Instance() *record.Instance", x)
	e.Block("if x.inst == nil")
	e.Line("return %s.Empty()", m.TypeVar())
	e.EndBlock()
	e.Line("return x.inst")
	e.EndBlock()
	e.Blank()

	oneLiners := []struct{ sig, body string }{
		{"RecordType() *record.Type", "x.Instance().RecordType()"},
		{"Encode() (any, error)", "x.Instance().Encode()"},
		{"EncodeTagged() (any, error)", "x.Instance().EncodeTagged()"},
		{"MarshalJSON() ([]byte, error)", "x.Instance().MarshalJSON()"},
		{"WithChild(key string, child any) (record.Record, error)", "x.Instance().WithChild(key, child)"},
		{"Children() iter.Seq2[string, any]", "x.Instance().Children()"},
		{"Equal(other record.Record) bool", "x.Instance().Equal(other)"},
		{"String() string", "x.Instance().String()"},
	}
	if m.Envelope.Compact {
		oneLiners = append(oneLiners, struct{ sig, body string }{"EncodeCompact() (string, error)", "x.Instance().EncodeCompact()"})
	}
	for _, ol := range oneLiners {
		e.Block("func (x %s) %s", x, ol.sig)
		e.Line("return %s", ol.body)
		e.EndBlock()
		e.Blank()
	}

	e.Doc("Set applies several field updates keyed by name or tag in one pass.")
	e.Block("func (x %s) Set(fields record.Fields) (%s, error)", x, x)
	e.Line("return x.wrap(x.Instance().SetMany(fields))")
	e.EndBlock()
	e.Blank()

	e.Block("func (x *%s) UnmarshalJSON(data []byte) error", x)
	e.Line("in, err := record.UnmarshalJSON(%s, data)", m.TypeVar())
	e.Block("if err != nil")
	e.Line("return err")
	e.EndBlock()
	e.Line("x.inst = in")
	e.Line("return nil")
	e.EndBlock()
	e.Blank()
}

// reader describes how an accessor turns a stored value into its display
// form.
type reader struct {
	assert  string // storage type asserted on the raw value; "" for raw values
	convert string // method applied after the assertion, e.g. ".Time()"
	items   string // element type of ItemsOf for lists and sets
}

func readerOf(f *compiler.FieldModel) reader {
	switch f.Shape.Kind {
	case compiler.ShapeDate:
		return reader{assert: "record.Date", convert: ".Time()"}
	case compiler.ShapeURI:
		return reader{assert: "record.URI", convert: ".URL()"}
	case compiler.ShapeBinary:
		return reader{assert: "record.Binary", convert: ".Bytes()"}
	case compiler.ShapeList, compiler.ShapeSet:
		return reader{items: f.Elem.ItemType()}
	case compiler.ShapeAny, compiler.ShapeMixedUnion:
		return reader{}
	case compiler.ShapeParam:
		if f.Storage == "any" {
			return reader{}
		}
	}
	return reader{assert: f.Storage}
}

func renderAccessor(e *Emitter, m *compiler.RecordModel, f *compiler.FieldModel) {
	x := m.GoName
	get := fmt.Sprintf("x.Instance().Get(%s)", m.FieldConst(f))
	r := readerOf(f)

	if !f.Optional() {
		e.Block("func (x %s) %s() %s", x, f.GoName, f.Display)
		switch {
		case r.items != "":
			e.Line("return record.ItemsOf[%s](%s)", r.items, get)
		case r.assert == "":
			e.Line("return %s", get)
		default:
			e.Line("v, _ := %s.(%s)", get, r.assert)
			e.Line("return v%s", r.convert)
		}
		e.EndBlock()
		e.Blank()
		return
	}

	e.Doc(fmt.Sprintf("%s returns the %s field and whether it is set.", f.GoName, f.Name))
	e.Block("func (x %s) %s() (%s, bool)", x, f.GoName, f.Display)
	switch {
	case r.items != "":
		e.Line("raw := %s", get)
		e.Line("return record.ItemsOf[%s](raw), raw != nil", r.items)
	case r.assert == "":
		e.Line("raw := %s", get)
		e.Line("return raw, raw != nil")
	default:
		e.Line("v, ok := %s.(%s)", get, r.assert)
		e.Line("return v%s, ok", r.convert)
	}
	e.EndBlock()
	e.Blank()
}

// elemInput is the Go type mutators take for one container element.
func elemInput(p *compiler.Property) string {
	if p.Nullable() {
		return "any"
	}
	return p.Input
}

func renderMutator(e *Emitter, m *compiler.RecordModel, f *compiler.FieldModel, mu compiler.Mutator) {
	x := m.GoName
	idx := m.FieldConst(f)
	in := "x.Instance()"

	// fallible mutators return (X, error); the others return X.
	var params, call string
	fallible := true
	switch mu.Op {
	case compiler.OpSet:
		params, call = "v "+f.Input, "Set("+idx+", v)"
	case compiler.OpUnset:
		call = "Unset(" + idx + ")"
	case compiler.OpPush, compiler.OpUnshift:
		params = "items ..." + elemInput(f.Elem)
		call = fmt.Sprintf("%s(%s, record.AnyItems(items)...)", mu.Op, idx)
	case compiler.OpSplice:
		params = "start, count int, items ..." + elemInput(f.Elem)
		call = "Splice(" + idx + ", start, count, record.AnyItems(items)...)"
	case compiler.OpFill:
		params = "v " + elemInput(f.Elem) + ", start, end int"
		call = "Fill(" + idx + ", v, start, end)"
	case compiler.OpPop, compiler.OpShift, compiler.OpReverse, compiler.OpClear:
		fallible = false
		call = fmt.Sprintf("%s(%s)", mu.Op, idx)
	case compiler.OpSort:
		fallible = false
		params = fmt.Sprintf("cmp func(a, b %s) int", f.Elem.ItemType())
		call = "Sort(" + idx + ", record.CompareAs(cmp))"
	case compiler.OpCopyWithin:
		fallible = false
		params = "target, start, end int"
		call = "CopyWithin(" + idx + ", target, start, end)"
	case compiler.OpFilter:
		fallible = false
		params = fmt.Sprintf("keep func(%s) bool", f.Elem.ItemType())
		call = "Filter(" + idx + ", record.KeepAs(keep))"
	case compiler.OpAdd:
		params, call = "v "+elemInput(f.Elem), "Add("+idx+", v)"
	case compiler.OpAddAll:
		params = "vs ..." + elemInput(f.Elem)
		call = "AddAll(" + idx + ", record.AnyItems(vs)...)"
	case compiler.OpDelete:
		fallible = false
		params, call = "v "+elemInput(f.Elem), "Delete("+idx+", v)"
	case compiler.OpDeleteAll:
		fallible = false
		params = "vs ..." + elemInput(f.Elem)
		call = "DeleteAll(" + idx + ", record.AnyItems(vs)...)"
	case compiler.OpMapValues:
		t := f.Elem.ItemType()
		params = fmt.Sprintf("fn func(%s) %s", t, t)
		call = "MapValues(" + idx + ", record.MapAs(fn))"
	case compiler.OpUpdate:
		params = "fn func(*record.Set) any"
		call = "Update(" + idx + ", fn)"
	case compiler.OpSetEntry:
		params = "k " + elemInput(f.MapKey) + ", v " + elemInput(f.Elem)
		call = "SetEntry(" + idx + ", k, v)"
	case compiler.OpDeleteEntry:
		fallible = false
		params, call = "k "+elemInput(f.MapKey), "DeleteEntry("+idx+", k)"
	case compiler.OpMerge:
		params, call = "other any", "Merge("+idx+", other)"
	case compiler.OpUpdateEntry:
		v := f.Elem.ItemType()
		params = fmt.Sprintf("k %s, fn func(v %s, ok bool) %s", elemInput(f.MapKey), v, v)
		call = "UpdateEntry(" + idx + ", k, record.UpdateEntryAs(fn))"
	case compiler.OpMapEntries:
		k, v := f.MapKey.ItemType(), f.Elem.ItemType()
		params = fmt.Sprintf("fn func(k %s, v %s) (%s, %s)", k, v, k, v)
		call = "MapEntries(" + idx + ", record.MapEntriesAs(fn))"
	case compiler.OpFilterEntry:
		fallible = false
		params = fmt.Sprintf("keep func(k %s, v %s) bool", f.MapKey.ItemType(), f.Elem.ItemType())
		call = "FilterEntries(" + idx + ", record.KeepEntriesAs(keep))"
	default:
		panic("codegen: unknown mutator " + strconv.Quote(string(mu.Op)))
	}

	if fallible {
		e.Block("func (x %s) %s(%s) (%s, error)", x, mu.Method, params, x)
		e.Line("return x.wrap(%s.%s)", in, call)
	} else {
		e.Block("func (x %s) %s(%s) %s", x, mu.Method, params, x)
		e.Line("return %s{inst: %s.%s}", x, in, call)
	}
	e.EndBlock()
	e.Blank()
}
